package geo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/internal/geo"
)

// Coordinates around central Paris. Distances below are approximate but the
// relative ordering is what matters.
const (
	centerLat = 48.8566
	centerLng = 2.3522
)

func entry(lat, lng float64, status domain.ReportStatus, category domain.Category, age time.Duration) domain.ReportNearby {
	return domain.ReportNearby{
		ID:        uuid.New(),
		Title:     "test report",
		Category:  category,
		Severity:  domain.SeverityLow,
		Status:    status,
		Lat:       lat,
		Lng:       lng,
		CreatedAt: time.Now().Add(-age),
	}
}

func TestMemoryIndex_OrdersByDistance(t *testing.T) {
	t.Parallel()

	ix := geo.NewMemoryIndex()

	far := entry(48.87, 2.38, domain.StatusReported, domain.CategoryOther, time.Hour)
	near := entry(48.857, 2.353, domain.StatusReported, domain.CategoryOther, time.Hour)
	mid := entry(48.86, 2.36, domain.StatusReported, domain.CategoryOther, time.Hour)
	ix.Upsert(far)
	ix.Upsert(near)
	ix.Upsert(mid)

	got, err := ix.FindNearby(context.Background(), domain.NearbyRequest{
		Lat: centerLat, Lng: centerLng, RadiusM: 10000, Limit: 10,
	})
	if err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	if got[0].ID != near.ID || got[1].ID != mid.ID || got[2].ID != far.ID {
		t.Fatalf("wrong order: %v %v %v", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].DistanceM <= 0 || got[0].DistanceM >= got[1].DistanceM {
		t.Fatalf("distances not increasing: %v then %v", got[0].DistanceM, got[1].DistanceM)
	}
}

func TestMemoryIndex_RadiusExcludes(t *testing.T) {
	t.Parallel()

	ix := geo.NewMemoryIndex()
	inside := entry(48.857, 2.353, domain.StatusReported, domain.CategoryOther, 0)
	outside := entry(48.95, 2.55, domain.StatusReported, domain.CategoryOther, 0)
	ix.Upsert(inside)
	ix.Upsert(outside)

	got, err := ix.FindNearby(context.Background(), domain.NearbyRequest{
		Lat: centerLat, Lng: centerLng, RadiusM: 1000, Limit: 10,
	})
	if err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != inside.ID {
		t.Fatalf("expected only the inside report, got %d results", len(got))
	}
}

func TestMemoryIndex_FiltersStatusAndCategory(t *testing.T) {
	t.Parallel()

	ix := geo.NewMemoryIndex()
	match := entry(48.857, 2.353, domain.StatusReported, domain.CategorySanitation, 0)
	ix.Upsert(match)
	ix.Upsert(entry(48.857, 2.354, domain.StatusResolved, domain.CategorySanitation, 0))
	ix.Upsert(entry(48.857, 2.355, domain.StatusReported, domain.CategoryOther, 0))

	got, err := ix.FindNearby(context.Background(), domain.NearbyRequest{
		Lat: centerLat, Lng: centerLng, RadiusM: 5000, Limit: 10,
		Status:   domain.StatusReported,
		Category: domain.CategorySanitation,
	})
	if err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != match.ID {
		t.Fatalf("expected the single matching report, got %d results", len(got))
	}
}

// Equidistant reports tie-break newest first.
func TestMemoryIndex_TieBreaksNewestFirst(t *testing.T) {
	t.Parallel()

	ix := geo.NewMemoryIndex()
	older := entry(48.86, 2.36, domain.StatusReported, domain.CategoryOther, 2*time.Hour)
	newer := entry(48.86, 2.36, domain.StatusReported, domain.CategoryOther, time.Minute)
	ix.Upsert(older)
	ix.Upsert(newer)

	got, err := ix.FindNearby(context.Background(), domain.NearbyRequest{
		Lat: centerLat, Lng: centerLng, RadiusM: 10000, Limit: 10,
	})
	if err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != newer.ID {
		t.Fatalf("expected newest first on distance tie")
	}
}

func TestMemoryIndex_LimitAndDelete(t *testing.T) {
	t.Parallel()

	ix := geo.NewMemoryIndex()
	a := entry(48.857, 2.353, domain.StatusReported, domain.CategoryOther, 0)
	b := entry(48.86, 2.36, domain.StatusReported, domain.CategoryOther, 0)
	ix.Upsert(a)
	ix.Upsert(b)

	got, err := ix.FindNearby(context.Background(), domain.NearbyRequest{
		Lat: centerLat, Lng: centerLng, RadiusM: 10000, Limit: 1,
	})
	if err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("limit not applied, got %d", len(got))
	}

	ix.Delete(a.ID)
	got, err = ix.FindNearby(context.Background(), domain.NearbyRequest{
		Lat: centerLat, Lng: centerLng, RadiusM: 10000, Limit: 10,
	})
	if err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("delete did not remove the report")
	}
}
