package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/panotour/internal/authoring"
	"github.com/alexanderramin/panotour/internal/codec"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/alexanderramin/panotour/internal/repository"
	"github.com/alexanderramin/panotour/internal/validator"
)

type tourService struct {
	tours    repository.TourRepo
	policy   limits.Policy
	observer UseCaseObserver
}

func NewTourService(tours repository.TourRepo, policy limits.Policy, observers ...UseCaseObserver) TourService {
	return &tourService{
		tours:    tours,
		policy:   policy,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *tourService) Policy() limits.Policy { return s.policy }

func (s *tourService) Create(ctx context.Context, title string) (t *domain.Tour, err error) {
	fields := map[string]any{"title": title}
	finish := observe(ctx, s.observer, "tour.create", fields)
	defer func() { finish(err) }()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, authoring.ErrTitleRequired
	}
	t = authoring.NewTour(title)
	if err := s.tours.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("saving tour: %w", err)
	}
	fields["tour_id"] = t.ID
	return t, nil
}

func (s *tourService) Get(ctx context.Context, id string) (*domain.Tour, error) {
	t, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading tour %s: %w", id, err)
	}
	return t, nil
}

func (s *tourService) List(ctx context.Context) ([]repository.TourSummary, error) {
	return s.tours.List(ctx)
}

func (s *tourService) Delete(ctx context.Context, id string) (err error) {
	finish := observe(ctx, s.observer, "tour.delete", map[string]any{"tour_id": id})
	defer func() { finish(err) }()

	if err := s.tours.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting tour %s: %w", id, err)
	}
	return nil
}

func (s *tourService) Validate(ctx context.Context, id string) (res validator.Result, err error) {
	fields := map[string]any{"tour_id": id}
	finish := observe(ctx, s.observer, "tour.validate", fields)
	defer func() { finish(err) }()

	t, err := s.Get(ctx, id)
	if err != nil {
		return validator.Result{}, err
	}
	res = validator.Validate(t, s.policy)
	fields["errors"] = len(res.Errors)
	fields["warnings"] = len(res.Warnings)
	return res, nil
}

func (s *tourService) Check(ctx context.Context, data []byte) (out []codec.Imported, err error) {
	fields := map[string]any{"bytes": len(data)}
	finish := observe(ctx, s.observer, "tour.check", fields)
	defer func() { finish(err) }()

	out, err = codec.Import(data, s.policy)
	if err != nil {
		return nil, err
	}
	fields["tours"] = len(out)
	return out, nil
}
