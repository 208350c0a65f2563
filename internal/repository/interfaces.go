package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/panotour/internal/domain"
)

// TourSummary is the listing view of a stored tour.
type TourSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	SceneCount   int       `json:"sceneCount"`
	HotspotCount int       `json:"hotspotCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TourRepo stores whole tour documents. Scenes and hotspots have no identity
// outside their tour and are always written and read with it.
type TourRepo interface {
	// Save inserts or replaces the tour with t.ID.
	Save(ctx context.Context, t *domain.Tour) error
	GetByID(ctx context.Context, id string) (*domain.Tour, error)
	List(ctx context.Context) ([]TourSummary, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}
