package domain

import (
	"time"

	"gorm.io/datatypes"
)

// SimilarityScore is a directed similarity edge from one product to another.
// Score is always within [0, 1]. Rows come either from a precomputation job
// or from the on-the-fly fallback persisting its result.
type SimilarityScore struct {
	ID              uint                               `gorm:"primaryKey" json:"id"`
	TenantID        string                             `gorm:"column:tenant_id;not null;index:idx_similarity_source,priority:2;index:idx_similarity_target,priority:2;index:idx_similarity_tenant_calculated,priority:1" json:"tenant_id"`
	SourceProductID string                             `gorm:"column:source_product_id;not null;index:idx_similarity_source,priority:1" json:"source_product_id"`
	TargetProductID string                             `gorm:"column:target_product_id;not null;index:idx_similarity_target,priority:1" json:"target_product_id"`
	SimilarityType  string                             `gorm:"column:similarity_type;index:idx_similarity_source,priority:3;index:idx_similarity_target,priority:3" json:"similarity_type"`
	Score           float64                            `gorm:"column:score;not null;index:idx_similarity_source,priority:4,sort:desc" json:"score"`
	Reasons         datatypes.JSONSlice[string]        `gorm:"column:reasons" json:"reasons"`
	Features        datatypes.JSONType[FeatureWeights] `gorm:"column:features" json:"features"`
	CalculatedAt    time.Time                          `gorm:"column:calculated_at;not null;index:idx_similarity_tenant_calculated,priority:2,sort:desc" json:"calculated_at"`
	ExpiresAt       time.Time                          `gorm:"column:expires_at;index" json:"expires_at"`
}

func (SimilarityScore) TableName() string {
	return "similarity_scores"
}

// FeatureWeights maps contributing factors to their weight in a similarity
// score, e.g. {"category": 0.3, "price": 0.18}.
type FeatureWeights map[string]float64
