package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/panotour/internal/db"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/alexanderramin/panotour/internal/repository"
	"github.com/alexanderramin/panotour/internal/validator"
)

type authoringService struct {
	uow      db.UnitOfWork
	policy   limits.Policy
	observer UseCaseObserver
}

func NewAuthoringService(uow db.UnitOfWork, policy limits.Policy, observers ...UseCaseObserver) AuthoringService {
	return &authoringService{
		uow:      uow,
		policy:   policy,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Edit loads the tour, applies fn and saves the result in one transaction.
// Drafts may stay invalid, but an edit that adds validation errors is
// rejected with a *ValidationError and nothing is written.
func (s *authoringService) Edit(ctx context.Context, id string, fn EditFunc) (out *EditResult, err error) {
	fields := map[string]any{"tour_id": id}
	finish := observe(ctx, s.observer, "tour.edit", fields)
	defer func() { finish(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteTourRepo(tx)
		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("loading tour %s: %w", id, err)
		}
		before := validator.Validate(current, s.policy)

		next, err := fn(current, s.policy)
		if err != nil {
			return err
		}
		// The id is the storage key; edits never move a tour.
		next.ID = current.ID

		after := validator.Validate(next, s.policy)
		fields["errors"] = len(after.Errors)
		if len(after.Errors) > len(before.Errors) {
			return &ValidationError{TourID: id, Result: after}
		}
		if err := repo.Save(ctx, next); err != nil {
			return fmt.Errorf("saving tour %s: %w", id, err)
		}
		out = &EditResult{Tour: next, Result: after}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
