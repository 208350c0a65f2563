package authoring

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
)

// HotspotSpec describes a hotspot to add. An empty ID is generated.
// Positions are normalized: yaw wraps into (-180, 180] and pitch is clamped.
type HotspotSpec struct {
	ID       string
	Title    string
	Yaw      float64
	Pitch    float64
	Payload  domain.Payload
	Icon     string
	CSSClass string
}

// AddHotspot appends a hotspot to a scene and returns the new tour and the
// hotspot's id.
func AddHotspot(t *domain.Tour, sceneID string, spec HotspotSpec, p limits.Policy) (*domain.Tour, string, error) {
	var id string
	out, err := edit(t, func(c *domain.Tour) error {
		s, err := findScene(c, sceneID)
		if err != nil {
			return err
		}
		if v := limits.CheckAddHotspot(s, p); v != nil {
			return v
		}
		title := strings.TrimSpace(spec.Title)
		if title == "" {
			return ErrTitleRequired
		}
		id = strings.TrimSpace(spec.ID)
		if id == "" {
			id = NewHotspotID(s)
		} else if _, i := s.HotspotByID(id); i >= 0 {
			return fmt.Errorf("hotspot %q in scene %q: %w", id, s.ID, ErrDuplicateID)
		}
		if err := checkPayload(c, s.ID, id, spec.Payload, p); err != nil {
			return err
		}
		s.Hotspots = append(s.Hotspots, domain.Hotspot{
			ID:       id,
			Title:    title,
			Yaw:      domain.NormalizeYaw(spec.Yaw),
			Pitch:    domain.ClampPitch(spec.Pitch),
			Payload:  normalizePayload(spec.Payload),
			Icon:     spec.Icon,
			CSSClass: spec.CSSClass,
		})
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return out, id, nil
}

// HotspotPatch changes hotspot fields; nil fields are left alone. A non-nil
// Payload must keep the hotspot's type.
type HotspotPatch struct {
	Title    *string
	Yaw      *float64
	Pitch    *float64
	Payload  domain.Payload
	Icon     *string
	CSSClass *string
}

func EditHotspot(t *domain.Tour, sceneID, hotspotID string, patch HotspotPatch, p limits.Policy) (*domain.Tour, error) {
	return edit(t, func(c *domain.Tour) error {
		h, err := findHotspot(c, sceneID, hotspotID)
		if err != nil {
			return err
		}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return ErrTitleRequired
			}
			h.Title = title
		}
		if patch.Yaw != nil {
			h.Yaw = domain.NormalizeYaw(*patch.Yaw)
		}
		if patch.Pitch != nil {
			h.Pitch = domain.ClampPitch(*patch.Pitch)
		}
		if patch.Payload != nil {
			if patch.Payload.Type() != h.Type() {
				return ErrTypeChanged
			}
			if err := checkPayload(c, sceneID, hotspotID, patch.Payload, p); err != nil {
				return err
			}
			h.Payload = normalizePayload(patch.Payload)
		}
		if patch.Icon != nil {
			h.Icon = *patch.Icon
		}
		if patch.CSSClass != nil {
			h.CSSClass = *patch.CSSClass
		}
		return nil
	})
}

// ChangeHotspotType replaces a hotspot's payload with one of another type.
// The new type must be allowed by the policy.
func ChangeHotspotType(t *domain.Tour, sceneID, hotspotID string, payload domain.Payload, p limits.Policy) (*domain.Tour, error) {
	return edit(t, func(c *domain.Tour) error {
		h, err := findHotspot(c, sceneID, hotspotID)
		if err != nil {
			return err
		}
		if err := checkPayload(c, sceneID, hotspotID, payload, p); err != nil {
			return err
		}
		h.Payload = normalizePayload(payload)
		return nil
	})
}

func RemoveHotspot(t *domain.Tour, sceneID, hotspotID string) (*domain.Tour, error) {
	return edit(t, func(c *domain.Tour) error {
		s, err := findScene(c, sceneID)
		if err != nil {
			return err
		}
		_, i := s.HotspotByID(hotspotID)
		if i < 0 {
			return fmt.Errorf("%w: %q in scene %q", ErrHotspotNotFound, hotspotID, sceneID)
		}
		s.Hotspots = append(s.Hotspots[:i:i], s.Hotspots[i+1:]...)
		return nil
	})
}

// ReorderHotspots rearranges a scene's hotspots into the order of ids.
func ReorderHotspots(t *domain.Tour, sceneID string, ids []string) (*domain.Tour, error) {
	return edit(t, func(c *domain.Tour) error {
		s, err := findScene(c, sceneID)
		if err != nil {
			return err
		}
		current := make([]string, len(s.Hotspots))
		for i, h := range s.Hotspots {
			current[i] = h.ID
		}
		perm, err := permutation(current, ids)
		if err != nil {
			return err
		}
		s.Hotspots = applyPermutation(s.Hotspots, perm)
		return nil
	})
}

// MoveHotspot moves a hotspot to index to within its scene, clamped to the
// valid range.
func MoveHotspot(t *domain.Tour, sceneID, hotspotID string, to int) (*domain.Tour, error) {
	return edit(t, func(c *domain.Tour) error {
		s, err := findScene(c, sceneID)
		if err != nil {
			return err
		}
		_, from := s.HotspotByID(hotspotID)
		if from < 0 {
			return fmt.Errorf("%w: %q in scene %q", ErrHotspotNotFound, hotspotID, sceneID)
		}
		s.Hotspots = move(s.Hotspots, from, to)
		return nil
	})
}

func findHotspot(t *domain.Tour, sceneID, hotspotID string) (*domain.Hotspot, error) {
	s, err := findScene(t, sceneID)
	if err != nil {
		return nil, err
	}
	h, _ := s.HotspotByID(hotspotID)
	if h == nil {
		return nil, fmt.Errorf("%w: %q in scene %q", ErrHotspotNotFound, hotspotID, sceneID)
	}
	return h, nil
}

// checkPayload enforces type and reference rules for a payload about to be
// stored on hotspot hotspotID of scene sceneID.
func checkPayload(t *domain.Tour, sceneID, hotspotID string, payload domain.Payload, p limits.Policy) error {
	if payload == nil {
		return ErrTypeRequired
	}
	ht := payload.Type()
	if !ht.IsKnown() {
		return fmt.Errorf("%w: %q", ErrUnknownType, ht)
	}
	if v := limits.CheckHotspotType(sceneID, hotspotID, ht, p); v != nil {
		return v
	}
	if sp, ok := payload.(domain.ScenePayload); ok && !t.HasScene(sp.TargetSceneID) {
		return fmt.Errorf("%w: %q", ErrUnresolvedTarget, sp.TargetSceneID)
	}
	return nil
}

func normalizePayload(payload domain.Payload) domain.Payload {
	switch pl := payload.(type) {
	case domain.ScenePayload:
		if pl.TargetView != nil {
			v := pl.TargetView.Normalized()
			pl.TargetView = &v
		}
		return pl
	case domain.LinkPayload:
		pl.URL = strings.TrimSpace(pl.URL)
		return pl
	case domain.VideoPayload:
		pl.URL = strings.TrimSpace(pl.URL)
		return pl
	}
	return payload
}
