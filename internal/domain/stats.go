package domain

import "github.com/google/uuid"

type ReporterCount struct {
	UserID  uuid.UUID `json:"user_id"`
	Reports int64     `json:"reports"`
}

type DashboardStats struct {
	Total        int64                  `json:"total"`
	ByStatus     map[ReportStatus]int64 `json:"by_status"`
	ByCategory   map[Category]int64     `json:"by_category"`
	AvgUpvotes   float64                `json:"avg_upvotes"`
	TopReporters []ReporterCount        `json:"top_reporters"`
}
