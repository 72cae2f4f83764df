package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

const (
	StatusReported     ReportStatus = "reported"
	StatusAcknowledged ReportStatus = "acknowledged"
	StatusInProgress   ReportStatus = "in_progress"
	StatusResolved     ReportStatus = "resolved"
	StatusClosed       ReportStatus = "closed"
	StatusRejected     ReportStatus = "rejected"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case StatusReported, StatusAcknowledged, StatusInProgress,
		StatusResolved, StatusClosed, StatusRejected:
		return true
	}
	return false
}

type Category string

const (
	CategorySanitation      Category = "sanitation"
	CategoryPublicWorks     Category = "public_works"
	CategoryTransportation  Category = "transportation"
	CategoryParksRecreation Category = "parks_recreation"
	CategoryWaterSewer      Category = "water_sewer"
	CategoryOther           Category = "other"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

type MediaAttachment struct {
	Type         MediaType `json:"type"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	ProviderID   string    `json:"-"`
}

// HistoryEntry is one record of the append-only audit trail. UpdatedBy is
// nil for system-attributed entries (automatic severity changes).
type HistoryEntry struct {
	ID        uuid.UUID    `json:"id"`
	Status    ReportStatus `json:"status"`
	Notes     string       `json:"notes"`
	UpdatedBy *uuid.UUID   `json:"updated_by,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type Report struct {
	ID              uuid.UUID         `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	Category        Category          `json:"category"`
	Severity        Severity          `json:"severity"`
	ReportedBy      *uuid.UUID        `json:"reported_by,omitempty"`
	LocationName    string            `json:"location_name"`
	Lat             float64           `json:"lat" validate:"lat"` // -90..90
	Lng             float64           `json:"lng" validate:"lng"` // -180..180
	Status          ReportStatus      `json:"status"`
	RejectionReason *string           `json:"rejection_reason,omitempty"`
	Upvotes         int               `json:"upvotes"`
	Media           []MediaAttachment `json:"media"`
	History         []HistoryEntry    `json:"history,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ReportNearby is the reduced projection returned by proximity queries.
type ReportNearby struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Category     Category     `json:"category"`
	Severity     Severity     `json:"severity"`
	Status       ReportStatus `json:"status"`
	LocationName string       `json:"location_name"`
	Lat          float64      `json:"lat"`
	Lng          float64      `json:"lng"`
	Upvotes      int          `json:"upvotes"`
	DistanceM    float64      `json:"distance_m"`
	CreatedAt    time.Time    `json:"created_at"`
}
