package service

import (
	"context"

	"github.com/alexanderramin/panotour/internal/codec"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/alexanderramin/panotour/internal/repository"
	"github.com/alexanderramin/panotour/internal/validator"
)

type TourService interface {
	Create(ctx context.Context, title string) (*domain.Tour, error)
	Get(ctx context.Context, id string) (*domain.Tour, error)
	List(ctx context.Context) ([]repository.TourSummary, error)
	Delete(ctx context.Context, id string) error
	Validate(ctx context.Context, id string) (validator.Result, error)
	// Check decodes and validates a document without storing it.
	Check(ctx context.Context, data []byte) ([]codec.Imported, error)
	Policy() limits.Policy
}

// EditFunc is one authoring step applied to a stored tour. It must not
// modify its input; the authoring package's operations satisfy this.
type EditFunc func(t *domain.Tour, p limits.Policy) (*domain.Tour, error)

// EditResult is the saved tour and its validation outcome.
type EditResult struct {
	Tour   *domain.Tour
	Result validator.Result
}

type AuthoringService interface {
	Edit(ctx context.Context, id string, fn EditFunc) (*EditResult, error)
}

type ImportOptions struct {
	// Overwrite replaces stored tours with the same id instead of failing.
	Overwrite bool
	// SkipInvalid imports the valid tours of a document and reports the
	// rest, instead of rejecting the whole document.
	SkipInvalid bool
}

type ImportStatus string

const (
	ImportCreated  ImportStatus = "created"
	ImportReplaced ImportStatus = "replaced"
	ImportSkipped  ImportStatus = "skipped_invalid"
)

type ImportedTour struct {
	ID     string           `json:"id"`
	Title  string           `json:"title"`
	Status ImportStatus     `json:"status"`
	Result validator.Result `json:"result"`
}

// ImportReport describes what an import stored. When Import returns an
// error, nothing was stored.
type ImportReport struct {
	Tours []ImportedTour `json:"tours"`
}

func (r *ImportReport) Count(status ImportStatus) int {
	n := 0
	for _, t := range r.Tours {
		if t.Status == status {
			n++
		}
	}
	return n
}

type ImportService interface {
	Import(ctx context.Context, data []byte, opts ImportOptions) (*ImportReport, error)
	ImportFile(ctx context.Context, path string, opts ImportOptions) (*ImportReport, error)
}

type ExportService interface {
	Export(ctx context.Context, id string) ([]byte, error)
	ExportAll(ctx context.Context) ([]byte, error)
}
