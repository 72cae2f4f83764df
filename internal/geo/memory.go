package geo

import (
	"context"
	"sort"
	"sync"

	"github.com/golang/geo/s2"
	"github.com/google/uuid"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
)

const earthRadiusM = 6371000.0

// MemoryIndex is an in-memory spatial index over report locations. It
// answers the same proximity queries as the PostGIS repository, which keeps
// the nearby algorithm testable without a database.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]indexEntry
}

type indexEntry struct {
	report domain.ReportNearby
	point  s2.Point
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[uuid.UUID]indexEntry)}
}

func (ix *MemoryIndex) Upsert(report domain.ReportNearby) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries[report.ID] = indexEntry{
		report: report,
		point:  s2.PointFromLatLng(s2.LatLngFromDegrees(report.Lat, report.Lng)),
	}
}

func (ix *MemoryIndex) Delete(id uuid.UUID) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.entries, id)
}

func (ix *MemoryIndex) FindNearby(ctx context.Context, req domain.NearbyRequest) ([]domain.ReportNearby, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	center := s2.PointFromLatLng(s2.LatLngFromDegrees(req.Lat, req.Lng))

	ix.mu.RLock()
	matches := make([]domain.ReportNearby, 0, len(ix.entries))
	for _, entry := range ix.entries {
		if req.Status != "" && entry.report.Status != req.Status {
			continue
		}
		if req.Category != "" && entry.report.Category != req.Category {
			continue
		}
		dist := center.Distance(entry.point).Radians() * earthRadiusM
		if dist > req.RadiusM {
			continue
		}
		n := entry.report
		n.DistanceM = dist
		matches = append(matches, n)
	}
	ix.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DistanceM != matches[j].DistanceM {
			return matches[i].DistanceM < matches[j].DistanceM
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	if req.Limit > 0 && len(matches) > req.Limit {
		matches = matches[:req.Limit]
	}
	return matches, nil
}
