package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/panotour/internal/codec"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/repository"
	"golang.org/x/sync/errgroup"
)

const exportConcurrency = 4

type exportService struct {
	tours    repository.TourRepo
	observer UseCaseObserver
}

func NewExportService(tours repository.TourRepo, observers ...UseCaseObserver) ExportService {
	return &exportService{
		tours:    tours,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *exportService) Export(ctx context.Context, id string) (data []byte, err error) {
	finish := observe(ctx, s.observer, "tour.export", map[string]any{"tour_id": id})
	defer func() { finish(err) }()

	t, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading tour %s: %w", id, err)
	}
	return codec.Export(t)
}

// ExportAll writes every stored tour as one collection document, in list
// order.
func (s *exportService) ExportAll(ctx context.Context) (data []byte, err error) {
	fields := map[string]any{}
	finish := observe(ctx, s.observer, "tour.export_all", fields)
	defer func() { finish(err) }()

	summaries, err := s.tours.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tours: %w", err)
	}
	fields["tours"] = len(summaries)

	tours := make([]*domain.Tour, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportConcurrency)
	for i, sum := range summaries {
		g.Go(func() error {
			t, err := s.tours.GetByID(gctx, sum.ID)
			if err != nil {
				return fmt.Errorf("loading tour %s: %w", sum.ID, err)
			}
			tours[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return codec.ExportCollection(tours)
}
