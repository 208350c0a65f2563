package domain

type HotspotType string

const (
	HotspotInfo  HotspotType = "info"
	HotspotLink  HotspotType = "link"
	HotspotScene HotspotType = "scene"
	HotspotVideo HotspotType = "video"
)

// KnownHotspotTypes is the full type universe, in display order. Tiers
// restrict it further.
var KnownHotspotTypes = []HotspotType{HotspotInfo, HotspotLink, HotspotScene, HotspotVideo}

// IsKnown reports whether t is part of the type universe.
func (t HotspotType) IsKnown() bool {
	for _, k := range KnownHotspotTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Payload is the type-specific content of a hotspot. The set of
// implementations is closed to this package.
type Payload interface {
	Type() HotspotType
	isPayload()
}

// InfoPayload carries free text or rich content shown on focus.
type InfoPayload struct {
	Text string
}

// LinkPayload points at an external absolute URL.
type LinkPayload struct {
	URL       string
	NewWindow bool
}

// ScenePayload is a weak reference to another scene of the same tour.
// TargetView, when set, overrides the target scene's initial view.
type ScenePayload struct {
	TargetSceneID string
	TargetView    *View
}

// VideoPayload embeds a video; only available on tiers that allow it.
type VideoPayload struct {
	URL string
}

// UnknownPayload holds a hotspot whose type is missing or not recognised.
// It exists so decoded drafts reach the validator instead of failing to load.
type UnknownPayload struct {
	Kind HotspotType
}

func (InfoPayload) Type() HotspotType      { return HotspotInfo }
func (LinkPayload) Type() HotspotType      { return HotspotLink }
func (ScenePayload) Type() HotspotType     { return HotspotScene }
func (VideoPayload) Type() HotspotType     { return HotspotVideo }
func (p UnknownPayload) Type() HotspotType { return p.Kind }

func (InfoPayload) isPayload()    {}
func (LinkPayload) isPayload()    {}
func (ScenePayload) isPayload()   {}
func (VideoPayload) isPayload()   {}
func (UnknownPayload) isPayload() {}

// Hotspot is an interactive marker anchored on a scene's sphere.
type Hotspot struct {
	ID      string
	Title   string
	Yaw     float64
	Pitch   float64
	Payload Payload

	// Display hints passed through to the renderer.
	Icon     string
	CSSClass string
}

// Type returns the hotspot's variant, derived from its payload.
func (h Hotspot) Type() HotspotType {
	if h.Payload == nil {
		return ""
	}
	return h.Payload.Type()
}

// TargetSceneID returns the referenced scene id for scene hotspots.
func (h Hotspot) TargetSceneID() (string, bool) {
	if p, ok := h.Payload.(ScenePayload); ok {
		return p.TargetSceneID, true
	}
	return "", false
}

func (h Hotspot) clone() Hotspot {
	if p, ok := h.Payload.(ScenePayload); ok && p.TargetView != nil {
		v := *p.TargetView
		p.TargetView = &v
		h.Payload = p
	}
	return h
}

func (h Hotspot) equal(o Hotspot) bool {
	if h.ID != o.ID || h.Title != o.Title || h.Yaw != o.Yaw || h.Pitch != o.Pitch ||
		h.Icon != o.Icon || h.CSSClass != o.CSSClass {
		return false
	}
	a, aok := h.Payload.(ScenePayload)
	b, bok := o.Payload.(ScenePayload)
	if aok && bok {
		if a.TargetSceneID != b.TargetSceneID {
			return false
		}
		if (a.TargetView == nil) != (b.TargetView == nil) {
			return false
		}
		return a.TargetView == nil || *a.TargetView == *b.TargetView
	}
	return h.Payload == o.Payload
}
