// Package authoring implements the editing operations of the admin UI as
// pure transforms: each takes a tour and returns a modified deep copy, or an
// error and no copy. Limits, uniqueness and reference validity are checked on
// every call so a sequence of successful edits cannot produce a document the
// validator would reject for those reasons.
package authoring

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/google/uuid"
)

const firstSceneTitle = "Scene 1"

// NewTour returns a fresh tour with one empty scene, which is also the
// initial scene.
func NewTour(title string) *domain.Tour {
	t := &domain.Tour{
		ID:       uuid.NewString(),
		Title:    strings.TrimSpace(title),
		Scenes:   []domain.Scene{},
		Settings: domain.DefaultSettings(),
	}
	s := domain.Scene{
		ID:          NewSceneID(t, firstSceneTitle),
		Title:       firstSceneTitle,
		InitialView: domain.DefaultView(),
		Hotspots:    []domain.Hotspot{},
	}
	t.Scenes = append(t.Scenes, s)
	t.InitialSceneID = s.ID
	return t
}

// TourPatch changes top-level fields; nil fields are left alone.
type TourPatch struct {
	Title       *string
	Description *string
}

func EditTour(t *domain.Tour, p TourPatch) (*domain.Tour, error) {
	return edit(t, func(c *domain.Tour) error {
		if p.Title != nil {
			c.Title = strings.TrimSpace(*p.Title)
		}
		if p.Description != nil {
			c.Description = *p.Description
		}
		return nil
	})
}

// UpdateSettings applies fn to a copy of the tour's settings.
func UpdateSettings(t *domain.Tour, fn func(*domain.Settings)) (*domain.Tour, error) {
	return edit(t, func(c *domain.Tour) error {
		fn(&c.Settings)
		return nil
	})
}

// SceneSpec describes a scene to add. An empty ID is derived from Title and
// a nil InitialView means the default view.
type SceneSpec struct {
	ID          string
	Title       string
	Image       string
	InitialView *domain.View
}

// AddScene appends a scene and returns the new tour and the scene's id.
func AddScene(t *domain.Tour, spec SceneSpec, p limits.Policy) (*domain.Tour, string, error) {
	var id string
	out, err := edit(t, func(c *domain.Tour) error {
		if v := limits.CheckAddScene(c, p); v != nil {
			return v
		}
		id = strings.TrimSpace(spec.ID)
		if id == "" {
			id = NewSceneID(c, spec.Title)
		} else if c.HasScene(id) {
			return fmt.Errorf("scene %q: %w", id, ErrDuplicateID)
		}
		view := domain.DefaultView()
		if spec.InitialView != nil {
			view = spec.InitialView.Normalized()
		}
		c.Scenes = append(c.Scenes, domain.Scene{
			ID:          id,
			Title:       strings.TrimSpace(spec.Title),
			Image:       strings.TrimSpace(spec.Image),
			InitialView: view,
			Hotspots:    []domain.Hotspot{},
		})
		if c.InitialSceneID == "" && len(c.Scenes) == 1 {
			c.InitialSceneID = id
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return out, id, nil
}

// ScenePatch changes scene fields; nil fields are left alone.
type ScenePatch struct {
	Title       *string
	Image       *string
	InitialView *domain.View
}

func EditScene(t *domain.Tour, sceneID string, p ScenePatch) (*domain.Tour, error) {
	return edit(t, func(c *domain.Tour) error {
		s, err := findScene(c, sceneID)
		if err != nil {
			return err
		}
		if p.Title != nil {
			s.Title = strings.TrimSpace(*p.Title)
		}
		if p.Image != nil {
			s.Image = strings.TrimSpace(*p.Image)
		}
		if p.InitialView != nil {
			s.InitialView = p.InitialView.Normalized()
		}
		return nil
	})
}

// HotspotRef locates a hotspot inside a tour.
type HotspotRef struct {
	SceneID   string `json:"sceneId"`
	HotspotID string `json:"hotspotId"`
}

// DeleteReport lists what DeleteScene scrubbed besides the scene itself.
type DeleteReport struct {
	SceneID             string       `json:"sceneId"`
	RemovedHotspots     []HotspotRef `json:"removedHotspots"`
	InitialSceneCleared bool         `json:"initialSceneCleared"`
}

// DeleteScene removes a scene together with every scene hotspot elsewhere
// that targeted it. If the scene was the initial scene, InitialSceneID is
// cleared and the viewer falls back to the first remaining scene.
func DeleteScene(t *domain.Tour, sceneID string) (*domain.Tour, DeleteReport, error) {
	report := DeleteReport{SceneID: sceneID, RemovedHotspots: []HotspotRef{}}
	out, err := edit(t, func(c *domain.Tour) error {
		_, idx := c.SceneByID(sceneID)
		if idx < 0 {
			return fmt.Errorf("%w: %q", ErrSceneNotFound, sceneID)
		}
		c.Scenes = slices.Delete(c.Scenes, idx, idx+1)

		for i := range c.Scenes {
			s := &c.Scenes[i]
			s.Hotspots = slices.DeleteFunc(s.Hotspots, func(h domain.Hotspot) bool {
				target, ok := h.TargetSceneID()
				if ok && target == sceneID {
					report.RemovedHotspots = append(report.RemovedHotspots, HotspotRef{SceneID: s.ID, HotspotID: h.ID})
					return true
				}
				return false
			})
		}
		if c.InitialSceneID == sceneID {
			c.InitialSceneID = ""
			report.InitialSceneCleared = true
		}
		return nil
	})
	if err != nil {
		return nil, DeleteReport{}, err
	}
	return out, report, nil
}

// SetInitialScene points the tour's entry at sceneID. An empty id clears it.
func SetInitialScene(t *domain.Tour, sceneID string) (*domain.Tour, error) {
	return edit(t, func(c *domain.Tour) error {
		if sceneID != "" && !c.HasScene(sceneID) {
			return fmt.Errorf("%w: %q", ErrSceneNotFound, sceneID)
		}
		c.InitialSceneID = sceneID
		return nil
	})
}

// ReorderScenes rearranges scenes into the order of ids, which must be a
// permutation of the current scene ids.
func ReorderScenes(t *domain.Tour, ids []string) (*domain.Tour, error) {
	return edit(t, func(c *domain.Tour) error {
		current := make([]string, len(c.Scenes))
		for i, s := range c.Scenes {
			current[i] = s.ID
		}
		perm, err := permutation(current, ids)
		if err != nil {
			return err
		}
		c.Scenes = applyPermutation(c.Scenes, perm)
		return nil
	})
}

// MoveScene moves a scene to index to, clamped to the valid range.
func MoveScene(t *domain.Tour, sceneID string, to int) (*domain.Tour, error) {
	return edit(t, func(c *domain.Tour) error {
		_, from := c.SceneByID(sceneID)
		if from < 0 {
			return fmt.Errorf("%w: %q", ErrSceneNotFound, sceneID)
		}
		c.Scenes = move(c.Scenes, from, to)
		return nil
	})
}

// edit runs fn on a deep copy of t and returns the copy only if fn succeeds.
func edit(t *domain.Tour, fn func(*domain.Tour) error) (*domain.Tour, error) {
	if t == nil {
		return nil, ErrNilTour
	}
	c := t.Clone()
	if err := fn(c); err != nil {
		return nil, err
	}
	return c, nil
}

func findScene(t *domain.Tour, id string) (*domain.Scene, error) {
	s, _ := t.SceneByID(id)
	if s == nil {
		return nil, fmt.Errorf("%w: %q", ErrSceneNotFound, id)
	}
	return s, nil
}

// permutation maps each position of order to its index in current.
func permutation(current, order []string) ([]int, error) {
	if len(order) != len(current) {
		return nil, fmt.Errorf("%w: got %d ids, want %d", ErrNotPermutation, len(order), len(current))
	}
	index := make(map[string]int, len(current))
	for i, id := range current {
		index[id] = i
	}
	seen := make(map[string]bool, len(order))
	perm := make([]int, len(order))
	for i, id := range order {
		j, ok := index[id]
		if !ok || seen[id] {
			return nil, fmt.Errorf("%w: %q", ErrNotPermutation, id)
		}
		seen[id] = true
		perm[i] = j
	}
	return perm, nil
}

func applyPermutation[T any](items []T, perm []int) []T {
	out := make([]T, len(perm))
	for i, j := range perm {
		out[i] = items[j]
	}
	return out
}

func move[T any](items []T, from, to int) []T {
	to = max(0, min(to, len(items)-1))
	if from == to {
		return items
	}
	item := items[from]
	items = slices.Delete(items, from, from+1)
	return slices.Insert(items, to, item)
}
