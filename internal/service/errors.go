package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/panotour/internal/validator"
)

var (
	ErrTourExists    = errors.New("tour already exists")
	ErrNoTours       = errors.New("document contains no tours")
	ErrDuplicateTour = errors.New("tour id appears more than once in document")
)

// ValidationError rejects a write because the document has blocking issues.
type ValidationError struct {
	TourID string
	Result validator.Result
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("tour %s is invalid (%d errors):", e.TourID, len(e.Result.Errors))
	var b strings.Builder
	b.WriteString(msg)
	for _, is := range e.Result.Errors {
		fmt.Fprintf(&b, "\n  - %s: %s", is.Path, is.Message)
	}
	return b.String()
}
