// Package navigation is the runtime state machine of the viewer. It turns
// renderer events and user controls into renderer commands, one scene at a
// time. An Engine is not safe for concurrent use; run one per viewer and
// deliver events from a single goroutine.
package navigation

import (
	"errors"
	"io"
	"log/slog"

	"github.com/alexanderramin/panotour/internal/domain"
)

type Option func(*Engine)

func WithEdgePolicy(p EdgePolicy) Option {
	return func(e *Engine) { e.edge = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

type Engine struct {
	tour *domain.Tour
	r    Renderer
	host Host
	log  *slog.Logger
	edge EdgePolicy

	current  string
	pending  *Transition
	camera   domain.View
	focused  string
	rendered []string

	autorotate       bool
	userSuspended    bool
	focusSuspended   bool
	autorotateActive bool
}

// New creates an engine over a private copy of tour. Nothing is rendered
// until Start is called.
func New(tour *domain.Tour, r Renderer, host Host, opts ...Option) (*Engine, error) {
	if tour == nil {
		return nil, errors.New("navigation: nil tour")
	}
	if r == nil || host == nil {
		return nil, errors.New("navigation: renderer and host are required")
	}
	e := &Engine{
		tour:       tour.Clone(),
		r:          r,
		host:       host,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		edge:       EdgeClamp,
		camera:     domain.DefaultView(),
		autorotate: tour.Settings.Autorotate.Enabled,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Start requests the tour's start scene: the initial scene, or the first
// scene when none is set.
func (e *Engine) Start() bool {
	s := e.tour.StartScene()
	if s == nil {
		e.fault(Fault{Kind: FaultNoScenes, Reason: "tour has no scenes"})
		return false
	}
	e.request(s, TriggerStart, "", s.InitialView)
	return true
}

// State returns a snapshot; mutating it does not affect the engine.
func (e *Engine) State() State {
	st := State{
		Phase:             PhaseIdle,
		CurrentSceneID:    e.current,
		Camera:            e.camera,
		FocusedHotspotID:  e.focused,
		AutorotateEnabled: e.autorotate,
		AutorotateActive:  e.autorotateActive,
	}
	if e.pending != nil {
		p := *e.pending
		st.Pending = &p
		st.Phase = PhaseTransitioning
	}
	return st
}

// CurrentScene returns the scene being shown, if any.
func (e *Engine) CurrentScene() (domain.Scene, bool) {
	s, _ := e.tour.SceneByID(e.current)
	if s == nil {
		return domain.Scene{}, false
	}
	return *s, true
}

// Tour returns the engine's copy of the tour. Callers must not modify it.
func (e *Engine) Tour() *domain.Tour {
	return e.tour
}

// SceneLoaded completes the pending transition. An empty id means "whatever
// is pending"; an id that does not match the pending target is a stale
// completion of an abandoned request and is ignored.
func (e *Engine) SceneLoaded(sceneID string) {
	if e.pending == nil {
		e.log.Debug("scene loaded with no pending transition", "scene", sceneID)
		return
	}
	if sceneID != "" && sceneID != e.pending.To {
		e.log.Debug("ignoring stale scene load", "scene", sceneID, "pending", e.pending.To)
		return
	}
	e.commit(*e.pending)
}

// SceneLoadFailed abandons the pending transition. The engine stays on the
// scene it was showing before.
func (e *Engine) SceneLoadFailed(reason string) {
	if e.pending == nil {
		return
	}
	f := Fault{Kind: FaultSceneLoadFailed, SceneID: e.pending.To, HotspotID: e.pending.HotspotID, Reason: reason}
	e.pending = nil
	e.fault(f)
	e.applyAutorotate()
}

// HotspotActivated reacts to a click on a hotspot of the current scene.
func (e *Engine) HotspotActivated(hotspotID string) {
	scene, _ := e.tour.SceneByID(e.current)
	if scene == nil {
		e.fault(Fault{Kind: FaultUnknownHotspot, HotspotID: hotspotID, Reason: "no scene is shown"})
		return
	}
	h, _ := scene.HotspotByID(hotspotID)
	if h == nil {
		e.fault(Fault{Kind: FaultUnknownHotspot, SceneID: scene.ID, HotspotID: hotspotID})
		return
	}

	switch p := h.Payload.(type) {
	case domain.ScenePayload:
		target, _ := e.tour.SceneByID(p.TargetSceneID)
		if target == nil {
			e.fault(Fault{Kind: FaultUnresolvedTarget, SceneID: p.TargetSceneID, HotspotID: h.ID,
				Reason: "hotspot points at a scene that does not exist"})
			return
		}
		view := target.InitialView
		if p.TargetView != nil {
			view = *p.TargetView
		}
		e.request(target, TriggerHotspot, h.ID, view)
	case domain.LinkPayload:
		e.log.Debug("opening link", "hotspot", h.ID, "url", p.URL)
		e.host.OpenURL(p.URL, p.NewWindow)
	case domain.InfoPayload, domain.VideoPayload:
		e.focused = h.ID
		e.focusSuspended = true
		e.applyAutorotate()
	default:
		e.fault(Fault{Kind: FaultUnsupportedHotspot, SceneID: scene.ID, HotspotID: h.ID,
			Reason: "hotspot type " + string(h.Type()) + " is not supported"})
	}
}

// UserOrientationChanged records a camera move made by the user. A move
// that only rewrites yaw across the ±180 seam is not a change.
func (e *Engine) UserOrientationChanged(yaw, pitch, fov float64) {
	v := domain.View{Yaw: yaw, Pitch: pitch, FOV: fov}.Normalized()
	if v.Equal(e.camera) {
		return
	}
	e.camera = v
	e.userSuspended = true
	e.applyAutorotate()
}

// Next moves to the following scene. While a transition is in flight the
// step is taken from its target. It reports whether a transition started.
func (e *Engine) Next() bool {
	return e.step(1, TriggerNext)
}

// Previous is Next in the other direction.
func (e *Engine) Previous() bool {
	return e.step(-1, TriggerPrevious)
}

// GoTo jumps to a scene by id.
func (e *Engine) GoTo(sceneID string) bool {
	s, _ := e.tour.SceneByID(sceneID)
	if s == nil {
		e.fault(Fault{Kind: FaultUnknownScene, SceneID: sceneID})
		return false
	}
	e.request(s, TriggerGoTo, "", s.InitialView)
	return true
}

func (e *Engine) ToggleAutorotate() {
	e.SetAutorotate(!e.autorotate)
}

// SetAutorotate turns autorotation on or off. Turning it on also lifts a
// suspension caused by the user moving the camera.
func (e *Engine) SetAutorotate(enabled bool) {
	e.autorotate = enabled
	if enabled {
		e.userSuspended = false
	}
	e.applyAutorotate()
}

// ResumeAutorotate lifts the suspension caused by user camera moves.
func (e *Engine) ResumeAutorotate() {
	e.userSuspended = false
	e.applyAutorotate()
}

// ClearFocus dismisses the focused hotspot and lifts the suspension it caused.
func (e *Engine) ClearFocus() {
	e.focused = ""
	e.focusSuspended = false
	e.applyAutorotate()
}

func (e *Engine) step(delta int, trigger Trigger) bool {
	n := len(e.tour.Scenes)
	if n == 0 {
		e.fault(Fault{Kind: FaultNoScenes, Reason: "tour has no scenes"})
		return false
	}
	from := e.current
	if e.pending != nil {
		from = e.pending.To
	}
	_, i := e.tour.SceneByID(from)
	if i < 0 {
		i = 0
		delta = 0
	}

	next := i + delta
	switch {
	case next >= 0 && next < n:
	case e.edge == EdgeWrap:
		next = (next%n + n) % n
	default:
		return false
	}
	if next == i && delta != 0 {
		return false
	}
	s := &e.tour.Scenes[next]
	e.request(s, trigger, "", s.InitialView)
	return true
}

// request starts a transition to s, superseding any pending one. The
// superseded request has no further effect: its completion will not match.
func (e *Engine) request(s *domain.Scene, trigger Trigger, hotspotID string, view domain.View) {
	t := Transition{From: e.current, To: s.ID, Trigger: trigger, HotspotID: hotspotID, View: view.Normalized()}
	if e.pending != nil {
		e.log.Debug("superseding transition", "abandoned", e.pending.To, "target", t.To)
	}
	e.pending = &t
	e.log.Debug("loading scene", "scene", s.ID, "trigger", string(trigger))
	e.r.LoadScene(s.Image, t.View)
}

func (e *Engine) commit(t Transition) {
	s, _ := e.tour.SceneByID(t.To)
	e.pending = nil

	for _, id := range e.rendered {
		e.r.RemoveHotspot(id)
	}
	e.rendered = e.rendered[:0]

	e.current = t.To
	e.camera = t.View
	e.focused = ""
	e.focusSuspended = false
	e.r.SetCameraView(e.camera)
	for _, h := range s.Hotspots {
		e.r.RenderHotspot(h)
		e.rendered = append(e.rendered, h.ID)
	}
	e.log.Info("scene entered", "scene", t.To, "from", t.From, "trigger", string(t.Trigger))
	e.applyAutorotate()
}

func (e *Engine) applyAutorotate() {
	active := e.autorotate && !e.userSuspended && !e.focusSuspended && e.current != ""
	if active == e.autorotateActive {
		return
	}
	e.autorotateActive = active
	e.r.SetAutorotate(active, e.tour.Settings.Autorotate.Speed)
}

func (e *Engine) fault(f Fault) {
	e.log.Warn("navigation fault", "kind", string(f.Kind), "scene", f.SceneID, "hotspot", f.HotspotID, "reason", f.Reason)
	e.host.Fault(f)
}
