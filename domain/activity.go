package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Time frames used for both trending buckets and popularity windows.
const (
	TimeFrameHour  = "hour"
	TimeFrameDay   = "day"
	TimeFrameWeek  = "week"
	TimeFrameMonth = "month"
)

// TimeFrames lists every supported frame, shortest first.
var TimeFrames = []string{TimeFrameHour, TimeFrameDay, TimeFrameWeek, TimeFrameMonth}

// NormalizeTimeFrame maps unknown frame values to the week default.
func NormalizeTimeFrame(frame string) string {
	switch frame {
	case TimeFrameHour, TimeFrameDay, TimeFrameWeek, TimeFrameMonth:
		return frame
	default:
		return TimeFrameWeek
	}
}

// TimeFrameDuration returns the recency window for a frame. Month is the
// 30-day approximation.
func TimeFrameDuration(frame string) time.Duration {
	switch frame {
	case TimeFrameHour:
		return time.Hour
	case TimeFrameDay:
		return 24 * time.Hour
	case TimeFrameWeek:
		return 7 * 24 * time.Hour
	case TimeFrameMonth:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// UserActivity is one product-view event. Rows are immutable; retention is
// handled by the scheduler sweep (30 days by default).
type UserActivity struct {
	ID         string            `gorm:"column:id;primaryKey" json:"id"`
	TenantID   string            `gorm:"column:tenant_id;not null;index:idx_activities_user_tenant,priority:2;index:idx_activities_tenant_viewed,priority:1;index:idx_activities_product_tenant_viewed,priority:2;index:idx_activities_session_tenant,priority:2" json:"tenant_id"`
	UserID     string            `gorm:"column:user_id;not null;index:idx_activities_user_tenant,priority:1" json:"user_id"`
	ProductID  string            `gorm:"column:product_id;not null;index:idx_activities_product_tenant_viewed,priority:1" json:"product_id"`
	SessionID  string            `gorm:"column:session_id;index:idx_activities_session_tenant,priority:1" json:"session_id"`
	DeviceType string            `gorm:"column:device_type" json:"device_type"`
	Source     string            `gorm:"column:source" json:"source"`
	ViewedAt   time.Time         `gorm:"column:viewed_at;not null;index:idx_activities_tenant_viewed,priority:2,sort:desc;index:idx_activities_product_tenant_viewed,priority:3,sort:desc" json:"viewed_at"`
	Duration   int               `gorm:"column:duration" json:"duration"`
	Metadata   datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (UserActivity) TableName() string {
	return "user_activities"
}

// RecentlyViewedItem is the cached/returned shape of one recently-viewed
// entry, with the product resolved through the catalog.
type RecentlyViewedItem struct {
	ProductID  string          `json:"product_id"`
	ViewedAt   time.Time       `json:"viewed_at"`
	DeviceType string          `json:"device_type"`
	Source     string          `json:"source"`
	Product    *CatalogProduct `json:"product,omitempty"`
}

// PopularProduct is one row of the live popularity aggregation.
type PopularProduct struct {
	ProductID   string `json:"product_id"`
	Views       int64  `json:"views"`
	UniqueUsers int64  `json:"unique_users"`
}

// ActivityAggregate is one (product) group of the trending aggregation
// within a time window.
type ActivityAggregate struct {
	ProductID      string `json:"product_id"`
	Views          int64  `json:"views"`
	UniqueUsers    int64  `json:"unique_users"`
	UniqueSessions int64  `json:"unique_sessions"`
	DirectViews    int64  `json:"direct_views"`
	SearchViews    int64  `json:"search_views"`
}
