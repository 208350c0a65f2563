package navigation

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/panotour/internal/domain"
)

// Renderer is the panorama rendering collaborator the engine drives.
// Calls are commands; completion of LoadScene is reported back through
// Engine.SceneLoaded or Engine.SceneLoadFailed.
type Renderer interface {
	LoadScene(image string, view domain.View)
	SetCameraView(view domain.View)
	RenderHotspot(h domain.Hotspot)
	RemoveHotspot(id string)
	SetAutorotate(active bool, speed float64)
}

// Host receives the engine's side effects outside the panorama.
type Host interface {
	OpenURL(url string, newWindow bool)
	Fault(f Fault)
}

type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseTransitioning Phase = "transitioning"
)

type Trigger string

const (
	TriggerStart    Trigger = "start"
	TriggerHotspot  Trigger = "hotspot"
	TriggerNext     Trigger = "next"
	TriggerPrevious Trigger = "previous"
	TriggerGoTo     Trigger = "goto"
)

// Transition is an in-flight scene change.
type Transition struct {
	From      string
	To        string
	Trigger   Trigger
	HotspotID string
	View      domain.View
}

// State is a snapshot of the engine. CurrentSceneID is empty until the
// first scene has loaded.
type State struct {
	Phase             Phase
	CurrentSceneID    string
	Pending           *Transition
	Camera            domain.View
	FocusedHotspotID  string
	AutorotateEnabled bool
	AutorotateActive  bool
}

type FaultKind string

const (
	FaultNoScenes           FaultKind = "no_scenes"
	FaultUnknownScene       FaultKind = "unknown_scene"
	FaultUnknownHotspot     FaultKind = "unknown_hotspot"
	FaultUnsupportedHotspot FaultKind = "unsupported_hotspot"
	FaultUnresolvedTarget   FaultKind = "unresolved_target"
	FaultSceneLoadFailed    FaultKind = "scene_load_failed"
)

// Fault is a recoverable runtime problem. The engine never enters an
// inconsistent state because of one; it reports it and carries on.
type Fault struct {
	Kind      FaultKind
	SceneID   string
	HotspotID string
	Reason    string
}

func (f Fault) Error() string {
	var b strings.Builder
	b.WriteString(string(f.Kind))
	if f.SceneID != "" {
		fmt.Fprintf(&b, " scene=%s", f.SceneID)
	}
	if f.HotspotID != "" {
		fmt.Fprintf(&b, " hotspot=%s", f.HotspotID)
	}
	if f.Reason != "" {
		b.WriteString(": " + f.Reason)
	}
	return b.String()
}

// EdgePolicy decides what Next and Previous do at either end of the scene
// list.
type EdgePolicy string

const (
	EdgeClamp EdgePolicy = "clamp"
	EdgeWrap  EdgePolicy = "wrap"
)

func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch p := EdgePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case EdgeClamp, EdgeWrap:
		return p, nil
	case "":
		return EdgeClamp, nil
	default:
		return "", fmt.Errorf("unknown edge policy %q (expected clamp or wrap)", s)
	}
}
