package limits

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/panotour/internal/domain"
)

type Code string

const (
	CodeSceneLimit       Code = "scene_limit_exceeded"
	CodeHotspotLimit     Code = "hotspot_limit_exceeded"
	CodeHotspotTypeLimit Code = "hotspot_type_not_allowed"
)

type EntityKind string

const (
	EntityTour    EntityKind = "tour"
	EntityScene   EntityKind = "scene"
	EntityHotspot EntityKind = "hotspot"
)

// Violation describes one breached limit. Message is a template with
// {placeholders} naming keys of Data, so callers can localize from the
// structured fields and ignore the English text entirely.
type Violation struct {
	Code       Code           `json:"code"`
	EntityID   string         `json:"entityId"`
	EntityKind EntityKind     `json:"entityKind"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data"`

	// SceneID locates hotspot violations; empty otherwise.
	SceneID string `json:"sceneId,omitempty"`

	// SceneIndex and HotspotIndex position the offending entity within the
	// evaluated tour, so ids that are empty or duplicated still resolve to
	// the right place. -1 when not applicable or not known, as for the
	// pre-checks.
	SceneIndex   int `json:"sceneIndex"`
	HotspotIndex int `json:"hotspotIndex"`
}

// Render fills the message template from Data.
func (v *Violation) Render() string {
	if len(v.Data) == 0 {
		return v.Message
	}
	keys := make([]string, 0, len(v.Data))
	for k := range v.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v.Data[k]))
	}
	return strings.NewReplacer(pairs...).Replace(v.Message)
}

func (v *Violation) Error() string {
	return v.Render()
}

// Evaluate checks a tour against a policy. It is pure: the tour is not
// modified and equal inputs give equal outputs. Counts exactly at a limit
// are allowed.
func Evaluate(t *domain.Tour, p Policy) []Violation {
	if t == nil {
		return nil
	}
	var out []Violation
	if v := sceneCount(t, len(t.Scenes), p); v != nil {
		out = append(out, *v)
	}
	for i, s := range t.Scenes {
		if v := hotspotCount(s.ID, len(s.Hotspots), p); v != nil {
			v.SceneIndex = i
			out = append(out, *v)
		}
		for j, h := range s.Hotspots {
			if v := hotspotType(s.ID, h.ID, h.Type(), p); v != nil {
				v.SceneIndex, v.HotspotIndex = i, j
				out = append(out, *v)
			}
		}
	}
	return out
}

// CheckAddScene returns the violation adding one more scene would cause.
func CheckAddScene(t *domain.Tour, p Policy) *Violation {
	return sceneCount(t, len(t.Scenes)+1, p)
}

// CheckAddHotspot returns the violation adding one more hotspot to the scene
// would cause.
func CheckAddHotspot(s *domain.Scene, p Policy) *Violation {
	return hotspotCount(s.ID, len(s.Hotspots)+1, p)
}

// CheckHotspotType returns a violation if the policy forbids type ht.
func CheckHotspotType(sceneID, hotspotID string, ht domain.HotspotType, p Policy) *Violation {
	return hotspotType(sceneID, hotspotID, ht, p)
}

func sceneCount(t *domain.Tour, count int, p Policy) *Violation {
	if !exceeds(count, p.MaxScenesPerTour) {
		return nil
	}
	return &Violation{
		Code:       CodeSceneLimit,
		EntityID:   t.ID,
		EntityKind: EntityTour,
		Message:    "tour has {count} scenes; the {tier} tier allows at most {limit}",
		Data:       map[string]any{"count": count, "limit": p.MaxScenesPerTour, "tier": string(p.Tier)},

		SceneIndex:   -1,
		HotspotIndex: -1,
	}
}

func hotspotCount(sceneID string, count int, p Policy) *Violation {
	if !exceeds(count, p.MaxHotspotsPerScene) {
		return nil
	}
	return &Violation{
		Code:       CodeHotspotLimit,
		EntityID:   sceneID,
		EntityKind: EntityScene,
		SceneID:    sceneID,
		Message:    "scene {scene} has {count} hotspots; the {tier} tier allows at most {limit}",
		Data:       map[string]any{"scene": sceneID, "count": count, "limit": p.MaxHotspotsPerScene, "tier": string(p.Tier)},

		SceneIndex:   -1,
		HotspotIndex: -1,
	}
}

// hotspotType only judges known types; unknown ones are a validation
// concern, not a licensing one.
func hotspotType(sceneID, hotspotID string, ht domain.HotspotType, p Policy) *Violation {
	if !ht.IsKnown() || p.Allows(ht) {
		return nil
	}
	return &Violation{
		Code:       CodeHotspotTypeLimit,
		EntityID:   hotspotID,
		EntityKind: EntityHotspot,
		SceneID:    sceneID,
		Message:    "hotspot {hotspot} uses type {type}, which the {tier} tier does not allow",
		Data:       map[string]any{"hotspot": hotspotID, "type": string(ht), "tier": string(p.Tier)},

		SceneIndex:   -1,
		HotspotIndex: -1,
	}
}
