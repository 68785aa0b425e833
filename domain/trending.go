package domain

import (
	"time"
)

// TrendingScore is the aggregate popularity of one product within one time
// frame. Rows for a (tenant, time frame) pair are replaced as a set on every
// recalculation; expires_at gives stale-but-not-yet-superseded rows a grace
// period before the sweeper removes them.
type TrendingScore struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TenantID       string    `gorm:"column:tenant_id;not null;index:idx_trending_tenant_category_score,priority:1;index:idx_trending_tenant_frame_calculated,priority:1;index:idx_trending_product_tenant_frame,priority:2" json:"tenant_id"`
	ProductID      string    `gorm:"column:product_id;not null;index:idx_trending_product_tenant_frame,priority:1" json:"product_id"`
	Category       string    `gorm:"column:category;index:idx_trending_tenant_category_score,priority:2" json:"category"`
	Score          float64   `gorm:"column:score;not null;index:idx_trending_tenant_category_score,priority:3,sort:desc" json:"score"`
	Views          int64     `gorm:"column:views" json:"views"`
	UniqueViews    int64     `gorm:"column:unique_views" json:"unique_views"`
	UniqueSessions int64     `gorm:"column:unique_sessions" json:"unique_sessions"`
	Purchases      int64     `gorm:"column:purchases" json:"purchases"`
	AddToCart      int64     `gorm:"column:add_to_cart" json:"add_to_cart"`
	Shares         int64     `gorm:"column:shares" json:"shares"`
	TimeFrame      string    `gorm:"column:time_frame;not null;index:idx_trending_tenant_frame_calculated,priority:2;index:idx_trending_product_tenant_frame,priority:3" json:"time_frame"`
	CalculatedAt   time.Time `gorm:"column:calculated_at;not null;index:idx_trending_tenant_frame_calculated,priority:3,sort:desc" json:"calculated_at"`
	ExpiresAt      time.Time `gorm:"column:expires_at;index" json:"expires_at"`
}

func (TrendingScore) TableName() string {
	return "trending_scores"
}
