package domain

import (
	"time"

	"github.com/google/uuid"
)

type CreateReportRequest struct {
	Title        string   `json:"title" validate:"required,min=5,max=100"`
	Description  string   `json:"description" validate:"omitempty,min=10,max=500"`
	Category     Category `json:"category" validate:"required,oneof=sanitation public_works transportation parks_recreation water_sewer other"`
	Severity     Severity `json:"severity" validate:"required,oneof=low medium high critical"`
	LocationName string   `json:"location_name" validate:"required,min=3,max=200"`
	Lat          float64  `json:"lat" validate:"lat"`
	Lng          float64  `json:"lng" validate:"lng"`
}

type UpdateStatusRequest struct {
	Status ReportStatus `json:"status" validate:"required"`
	Notes  string       `json:"notes" validate:"omitempty,max=500"`
}

type RejectReportRequest struct {
	Reason string `json:"reason" validate:"required,min=10,max=500"`
}

type ReportFilter struct {
	Status     ReportStatus `json:"status,omitempty" validate:"omitempty,oneof=reported acknowledged in_progress resolved closed rejected"`
	Category   Category     `json:"category,omitempty" validate:"omitempty,oneof=sanitation public_works transportation parks_recreation water_sewer other"`
	Severity   Severity     `json:"severity,omitempty" validate:"omitempty,oneof=low medium high critical"`
	ReportedBy *uuid.UUID   `json:"reported_by,omitempty"`
	From       *time.Time   `json:"from,omitempty"`
	To         *time.Time   `json:"to,omitempty"`
	Search     string       `json:"search,omitempty"` // case-insensitive substring over title+description
}

type ListReportsRequest struct {
	Filter   ReportFilter
	Page     int    `validate:"min=1"`
	Limit    int    `validate:"min=1,max=100"`
	SortBy   string // whitelisted scalar column, defaults to created_at
	SortDesc bool
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type ListReportsResponse struct {
	Items      []Report   `json:"items"`
	Pagination Pagination `json:"pagination"`
}

type NearbyRequest struct {
	Lat      float64      `json:"lat" validate:"lat"`
	Lng      float64      `json:"lng" validate:"lng"`
	RadiusM  float64      `json:"radius_m"` // clamped to 100..50000
	Limit    int          `json:"limit"`    // clamped to 1..100
	Status   ReportStatus `json:"status,omitempty" validate:"omitempty,oneof=reported acknowledged in_progress resolved closed rejected"`
	Category Category     `json:"category,omitempty" validate:"omitempty,oneof=sanitation public_works transportation parks_recreation water_sewer other"`
}

type NearbyResponse struct {
	Items   []ReportNearby `json:"items"`
	Lat     float64        `json:"lat"`
	Lng     float64        `json:"lng"`
	RadiusM float64        `json:"radius_m"`
	Limit   int            `json:"limit"`
}

// ToggleOutcome is the storage-level result of one upvote toggle, captured
// atomically with the membership change.
type ToggleOutcome struct {
	Upvotes    int
	HasUpvoted bool
	Severity   Severity
	Status     ReportStatus
}

type UpvoteResult struct {
	Upvotes    int      `json:"upvotes"`
	Severity   Severity `json:"severity"`
	HasUpvoted bool     `json:"has_upvoted"`
	// SeverityUpgraded reports any automatic severity change caused by the
	// toggle, including the downward recompute when the count drops back
	// under a threshold.
	SeverityUpgraded bool `json:"severity_upgraded"`
}
