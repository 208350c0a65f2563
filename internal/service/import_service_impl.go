package service

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/panotour/internal/codec"
	"github.com/alexanderramin/panotour/internal/db"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/alexanderramin/panotour/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	policy   limits.Policy
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, policy limits.Policy, observers ...UseCaseObserver) ImportService {
	return &importService{
		uow:      uow,
		policy:   policy,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *importService) ImportFile(ctx context.Context, path string, opts ImportOptions) (*ImportReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	return s.Import(ctx, data, opts)
}

// Import stores every tour of the document in a single transaction. A
// decode failure, an id clash, or (without SkipInvalid) any invalid tour
// aborts the whole import.
func (s *importService) Import(ctx context.Context, data []byte, opts ImportOptions) (report *ImportReport, err error) {
	fields := map[string]any{
		"bytes":        len(data),
		"overwrite":    opts.Overwrite,
		"skip_invalid": opts.SkipInvalid,
	}
	finish := observe(ctx, s.observer, "tour.import", fields)
	defer func() { finish(err) }()

	imported, err := codec.Import(data, s.policy)
	if err != nil {
		return nil, err
	}
	if len(imported) == 0 {
		return nil, ErrNoTours
	}

	seen := make(map[string]bool, len(imported))
	for _, im := range imported {
		if seen[im.Tour.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTour, im.Tour.ID)
		}
		seen[im.Tour.ID] = true
		if !im.Valid && !opts.SkipInvalid {
			return nil, &ValidationError{TourID: im.Tour.ID, Result: im.Result}
		}
	}

	report = &ImportReport{Tours: make([]ImportedTour, 0, len(imported))}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteTourRepo(tx)
		for _, im := range imported {
			entry := ImportedTour{ID: im.Tour.ID, Title: im.Tour.Title, Result: im.Result}
			if !im.Valid {
				entry.Status = ImportSkipped
				report.Tours = append(report.Tours, entry)
				continue
			}

			exists, err := repo.Exists(ctx, im.Tour.ID)
			if err != nil {
				return fmt.Errorf("checking tour %s: %w", im.Tour.ID, err)
			}
			entry.Status = ImportCreated
			if exists {
				if !opts.Overwrite {
					return fmt.Errorf("%w: %s", ErrTourExists, im.Tour.ID)
				}
				entry.Status = ImportReplaced
			}
			if err := repo.Save(ctx, im.Tour); err != nil {
				return fmt.Errorf("saving tour %s: %w", im.Tour.ID, err)
			}
			report.Tours = append(report.Tours, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields["created"] = report.Count(ImportCreated)
	fields["replaced"] = report.Count(ImportReplaced)
	fields["skipped"] = report.Count(ImportSkipped)
	return report, nil
}
