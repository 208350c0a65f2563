package validator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
)

// Validate checks a tour for structural, referential, range and limit
// problems. It never panics on a decodable document and never modifies it;
// calling it twice on the same tour gives the same result.
func Validate(t *domain.Tour, p limits.Policy) Result {
	c := newCollector()
	if t == nil {
		c.fail(CodeRequired, "", "document is required")
		return c.res
	}

	if strings.TrimSpace(t.ID) == "" {
		c.fail(CodeRequired, "id", "tour id is required")
	}
	if t.Scenes == nil {
		c.fail(CodeRequired, "scenes", "scenes must be a list")
	} else if len(t.Scenes) == 0 {
		c.warn(CodeEmptyTour, "scenes", "tour has no scenes")
	}

	sceneIDs := make(map[string]int, len(t.Scenes))
	var refs []sceneRef
	for i := range t.Scenes {
		refs = append(refs, validateScene(c, &t.Scenes[i], i, sceneIDs)...)
	}

	validateRefs(c, refs, sceneIDs, t.Scenes)

	if t.InitialSceneID != "" {
		if _, ok := sceneIDs[t.InitialSceneID]; !ok {
			c.fail(CodeUnresolvedInitialScene, "initialSceneId",
				fmt.Sprintf("initial scene %q does not exist", t.InitialSceneID))
		}
	}

	for _, path := range t.Defaulted {
		c.warn(CodeDefaulted, path, fmt.Sprintf("%s was missing; default applied", path))
	}

	for _, v := range limits.Evaluate(t, p) {
		c.fail(string(v.Code), violationPath(v), v.Render())
	}

	return c.res
}

// sceneRef is a scene-type hotspot whose target is resolved once every
// scene id is known, so forward references are allowed.
type sceneRef struct {
	path    string
	ownerID string
	target  string
}

func validateScene(c *collector, s *domain.Scene, i int, sceneIDs map[string]int) []sceneRef {
	prefix := fmt.Sprintf("scenes[%d]", i)

	if s.ID == "" {
		c.fail(CodeRequired, prefix+".id", "scene id is required")
	} else if first, dup := sceneIDs[s.ID]; dup {
		c.fail(CodeDuplicateID, prefix+".id", fmt.Sprintf("scene id %q already used by scenes[%d]", s.ID, first))
	} else {
		sceneIDs[s.ID] = i
	}

	if strings.TrimSpace(s.Title) == "" {
		c.warn(CodeMissingTitle, prefix+".title", "scene has no title")
	}
	if strings.TrimSpace(s.Image) == "" {
		c.warn(CodeMissingImage, prefix+".image", "scene has no panorama image and cannot be rendered yet")
	}
	validateView(c, prefix+".initialView", s.InitialView)

	var refs []sceneRef
	hotspotIDs := make(map[string]int, len(s.Hotspots))
	for j := range s.Hotspots {
		if ref, ok := validateHotspot(c, &s.Hotspots[j], fmt.Sprintf("%s.hotspots[%d]", prefix, j), j, hotspotIDs); ok {
			ref.ownerID = s.ID
			refs = append(refs, ref)
		}
	}
	return refs
}

func validateHotspot(c *collector, h *domain.Hotspot, prefix string, j int, ids map[string]int) (sceneRef, bool) {
	if h.ID == "" {
		c.fail(CodeRequired, prefix+".id", "hotspot id is required")
	} else if first, dup := ids[h.ID]; dup {
		c.fail(CodeDuplicateID, prefix+".id", fmt.Sprintf("hotspot id %q already used by hotspots[%d] of this scene", h.ID, first))
	} else {
		ids[h.ID] = j
	}

	if strings.TrimSpace(h.Title) == "" {
		c.fail(CodeRequired, prefix+".title", "hotspot title is required")
	}
	validateAngle(c, prefix+".yaw", h.Yaw, domain.YawInRange, domain.MinYaw, domain.MaxYaw)
	validateAngle(c, prefix+".pitch", h.Pitch, domain.PitchInRange, domain.MinPitch, domain.MaxPitch)

	switch p := h.Payload.(type) {
	case domain.InfoPayload:
		if strings.TrimSpace(p.Text) == "" {
			c.warn(CodeEmptyInfo, prefix+".text", "info hotspot has no text")
		}
	case domain.LinkPayload:
		validateURL(c, prefix+".url", p.URL)
	case domain.VideoPayload:
		validateURL(c, prefix+".url", p.URL)
	case domain.ScenePayload:
		if p.TargetView != nil {
			validateView(c, prefix+".targetView", *p.TargetView)
		}
		return sceneRef{path: prefix + ".targetSceneId", target: p.TargetSceneID}, true
	case domain.UnknownPayload:
		if p.Kind == "" {
			c.fail(CodeRequired, prefix+".type", "hotspot type is required")
		} else {
			c.fail(CodeUnknownType, prefix+".type", fmt.Sprintf("unknown hotspot type %q", p.Kind))
		}
	default:
		c.fail(CodeRequired, prefix+".type", "hotspot type is required")
	}
	return sceneRef{}, false
}

func validateRefs(c *collector, refs []sceneRef, sceneIDs map[string]int, scenes []domain.Scene) {
	for _, r := range refs {
		switch {
		case r.target == "":
			c.fail(CodeRequired, r.path, "scene hotspot needs a target scene")
		case !hasKey(sceneIDs, r.target):
			msg := fmt.Sprintf("target scene %q does not exist", r.target)
			if hint, ok := closest(r.target, knownIDs(scenes)); ok {
				msg += fmt.Sprintf(" (did you mean %q?)", hint)
			}
			c.fail(CodeUnresolvedTarget, r.path, msg)
		case r.target == r.ownerID:
			c.warn(CodeSelfTarget, r.path, "scene hotspot points at its own scene")
		}
	}
}

func validateView(c *collector, prefix string, v domain.View) {
	validateAngle(c, prefix+".yaw", v.Yaw, domain.YawInRange, domain.MinYaw, domain.MaxYaw)
	validateAngle(c, prefix+".pitch", v.Pitch, domain.PitchInRange, domain.MinPitch, domain.MaxPitch)
	validateAngle(c, prefix+".fov", v.FOV, domain.FOVInRange, domain.MinFOV, domain.MaxFOV)
}

func validateAngle(c *collector, path string, v float64, inRange func(float64) bool, lo, hi float64) {
	if !domain.IsFinite(v) {
		c.fail(CodeNotFinite, path, fmt.Sprintf("%s must be a finite number", path))
		return
	}
	if !inRange(v) {
		c.fail(CodeOutOfRange, path, fmt.Sprintf("%s %g is outside [%g, %g]", path, v, lo, hi))
	}
}

func validateURL(c *collector, path, raw string) {
	if strings.TrimSpace(raw) == "" {
		c.fail(CodeRequired, path, "url is required")
		return
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		c.fail(CodeInvalidURL, path, fmt.Sprintf("%q is not an absolute URL", raw))
		return
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		c.fail(CodeInvalidURL, path, fmt.Sprintf("%q has no host", raw))
	}
}

// violationPath maps a limit violation onto the field a UI should highlight.
func violationPath(v limits.Violation) string {
	switch {
	case v.EntityKind == limits.EntityScene && v.SceneIndex >= 0:
		return fmt.Sprintf("scenes[%d].hotspots", v.SceneIndex)
	case v.EntityKind == limits.EntityHotspot && v.SceneIndex >= 0 && v.HotspotIndex >= 0:
		return fmt.Sprintf("scenes[%d].hotspots[%d].type", v.SceneIndex, v.HotspotIndex)
	}
	return "scenes"
}

func knownIDs(scenes []domain.Scene) []string {
	ids := make([]string, 0, len(scenes))
	for _, s := range scenes {
		if s.ID != "" {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func hasKey(m map[string]int, k string) bool {
	_, ok := m[k]
	return ok
}
