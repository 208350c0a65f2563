package authoring

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/panotour/internal/domain"
)

var (
	ErrNilTour          = errors.New("tour is nil")
	ErrDuplicateID      = errors.New("id already in use")
	ErrUnresolvedTarget = errors.New("target scene does not exist")
	ErrSceneNotFound    = fmt.Errorf("scene %w", domain.ErrNotFound)
	ErrHotspotNotFound  = fmt.Errorf("hotspot %w", domain.ErrNotFound)
	ErrNotPermutation   = errors.New("order must list every id exactly once")
	ErrTitleRequired    = errors.New("title is required")
	ErrTypeRequired     = errors.New("hotspot type is required")
	ErrUnknownType      = errors.New("unknown hotspot type")
	ErrTypeChanged      = errors.New("payload type differs from hotspot type; use ChangeHotspotType")
)
