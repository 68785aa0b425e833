package domain

import (
	"time"

	"gorm.io/datatypes"
)

// RecommendationFeedback is one user reaction to a served recommendation.
// Rows are append-only and read back only in aggregate.
type RecommendationFeedback struct {
	ID                 string            `gorm:"column:id;primaryKey" json:"id"`
	TenantID           string            `gorm:"column:tenant_id;not null;index:idx_feedback_user_tenant,priority:2;index:idx_feedback_product_type,priority:2;index:idx_feedback_recotype_tenant,priority:2;index:idx_feedback_type_tenant,priority:2" json:"tenant_id"`
	UserID             string            `gorm:"column:user_id;not null;index:idx_feedback_user_tenant,priority:1" json:"user_id"`
	ProductID          string            `gorm:"column:product_id;not null;index:idx_feedback_product_type,priority:1" json:"product_id"`
	RecommendationType string            `gorm:"column:recommendation_type;index:idx_feedback_recotype_tenant,priority:1" json:"recommendation_type"`
	FeedbackType       string            `gorm:"column:feedback_type;not null;index:idx_feedback_product_type,priority:3;index:idx_feedback_type_tenant,priority:1" json:"feedback_type"`
	Rating             int               `gorm:"column:rating" json:"rating"`
	Comment            string            `gorm:"column:comment;type:text" json:"comment"`
	Timestamp          time.Time         `gorm:"column:timestamp;not null;index:idx_feedback_user_tenant,priority:3,sort:desc;index:idx_feedback_recotype_tenant,priority:3,sort:desc;index:idx_feedback_type_tenant,priority:3,sort:desc" json:"timestamp"`
	Metadata           datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (RecommendationFeedback) TableName() string {
	return "recommendation_feedback"
}

// FeedbackStat is one (feedback type, recommendation type) aggregate group.
type FeedbackStat struct {
	FeedbackType       string  `json:"feedback_type"`
	RecommendationType string  `json:"recommendation_type"`
	Count              int64   `json:"count"`
	AvgRating          float64 `json:"avg_rating"`
}
