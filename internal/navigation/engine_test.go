package navigation

import (
	"fmt"
	"testing"

	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls      []string
	loads      []string
	views      []domain.View
	rendered   map[string]bool
	autorotate []bool
}

func newRecorder() *recorder { return &recorder{rendered: map[string]bool{}} }

func (r *recorder) LoadScene(image string, view domain.View) {
	r.calls = append(r.calls, "load:"+image)
	r.loads = append(r.loads, image)
}

func (r *recorder) SetCameraView(v domain.View) {
	r.calls = append(r.calls, "camera")
	r.views = append(r.views, v)
}

func (r *recorder) RenderHotspot(h domain.Hotspot) {
	r.calls = append(r.calls, "render:"+h.ID)
	r.rendered[h.ID] = true
}

func (r *recorder) RemoveHotspot(id string) {
	r.calls = append(r.calls, "remove:"+id)
	delete(r.rendered, id)
}

func (r *recorder) SetAutorotate(active bool, speed float64) {
	r.calls = append(r.calls, fmt.Sprintf("autorotate:%v", active))
	r.autorotate = append(r.autorotate, active)
}

type host struct {
	opened []string
	faults []Fault
}

func (h *host) OpenURL(url string, newWindow bool) { h.opened = append(h.opened, url) }
func (h *host) Fault(f Fault)                      { h.faults = append(h.faults, f) }

func testTour() *domain.Tour {
	return &domain.Tour{
		ID: "t",
		Scenes: []domain.Scene{
			{ID: "a", Image: "a.jpg", InitialView: domain.View{Yaw: 10, FOV: 90}, Hotspots: []domain.Hotspot{
				{ID: "to-b", Title: "B", Payload: domain.ScenePayload{TargetSceneID: "b"}},
				{ID: "to-c", Title: "C", Payload: domain.ScenePayload{TargetSceneID: "c", TargetView: &domain.View{Yaw: -180, Pitch: 5, FOV: 60}}},
				{ID: "site", Title: "Site", Payload: domain.LinkPayload{URL: "https://example.org", NewWindow: true}},
				{ID: "note", Title: "Note", Payload: domain.InfoPayload{Text: "hello"}},
				{ID: "broken", Title: "Broken", Payload: domain.ScenePayload{TargetSceneID: "gone"}},
			}},
			{ID: "b", Image: "b.jpg", InitialView: domain.DefaultView(), Hotspots: []domain.Hotspot{
				{ID: "back", Title: "Back", Payload: domain.ScenePayload{TargetSceneID: "a"}},
			}},
			{ID: "c", Image: "c.jpg", InitialView: domain.DefaultView()},
		},
		Settings: domain.DefaultSettings(),
	}
}

func started(t *testing.T, tour *domain.Tour, opts ...Option) (*Engine, *recorder, *host) {
	t.Helper()
	r, h := newRecorder(), &host{}
	e, err := New(tour, r, h, opts...)
	require.NoError(t, err)
	require.True(t, e.Start())
	e.SceneLoaded("")
	require.Equal(t, "a", e.State().CurrentSceneID)
	return e, r, h
}

func TestStart_LoadsInitialOrFirstScene(t *testing.T) {
	tour := testTour()
	tour.InitialSceneID = "b"
	r, h := newRecorder(), &host{}
	e, err := New(tour, r, h)
	require.NoError(t, err)

	assert.Equal(t, PhaseIdle, e.State().Phase)
	assert.Empty(t, e.State().CurrentSceneID)

	require.True(t, e.Start())
	st := e.State()
	assert.Equal(t, PhaseTransitioning, st.Phase)
	assert.Equal(t, "b", st.Pending.To)
	assert.Equal(t, TriggerStart, st.Pending.Trigger)

	e.SceneLoaded("b")
	st = e.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, "b", st.CurrentSceneID)
	assert.True(t, r.rendered["back"])

	tour.InitialSceneID = "missing"
	e, err = New(tour, r, h)
	require.NoError(t, err)
	e.Start()
	assert.Equal(t, "a", e.State().Pending.To)
}

func TestStart_NoScenes(t *testing.T) {
	h := &host{}
	e, err := New(&domain.Tour{ID: "t", Scenes: []domain.Scene{}}, newRecorder(), h)
	require.NoError(t, err)
	assert.False(t, e.Start())
	require.Len(t, h.faults, 1)
	assert.Equal(t, FaultNoScenes, h.faults[0].Kind)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(nil, newRecorder(), &host{})
	assert.Error(t, err)
	_, err = New(testTour(), nil, &host{})
	assert.Error(t, err)
}

func TestSceneHotspot_TransitionsWithInitialView(t *testing.T) {
	e, r, _ := started(t, testTour())

	e.HotspotActivated("to-b")
	st := e.State()
	assert.Equal(t, PhaseTransitioning, st.Phase)
	assert.Equal(t, "a", st.CurrentSceneID)
	assert.Equal(t, Transition{From: "a", To: "b", Trigger: TriggerHotspot, HotspotID: "to-b", View: domain.DefaultView()}, *st.Pending)

	e.SceneLoaded("b")
	st = e.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, "b", st.CurrentSceneID)
	assert.Equal(t, domain.DefaultView(), st.Camera)
	assert.Equal(t, map[string]bool{"back": true}, r.rendered)
}

func TestSceneHotspot_TargetViewOverride(t *testing.T) {
	e, _, _ := started(t, testTour())
	e.HotspotActivated("to-c")
	e.SceneLoaded("c")
	assert.Equal(t, domain.View{Yaw: 180, Pitch: 5, FOV: 60}, e.State().Camera)
}

// Activating a link leaves the scene unchanged and opens the URL once.
func TestLinkHotspot_OpensURLOnce(t *testing.T) {
	e, r, h := started(t, testTour())
	before := e.State()
	calls := len(r.calls)

	e.HotspotActivated("site")

	assert.Equal(t, before, e.State())
	assert.Equal(t, []string{"https://example.org"}, h.opened)
	assert.Len(t, r.calls, calls)
}

// Two scene activations before the first load completes: only the second
// request survives, and a late completion of the first is ignored.
func TestRapidActivation_LatestWins(t *testing.T) {
	e, r, _ := started(t, testTour())

	e.HotspotActivated("to-b")
	e.HotspotActivated("to-c")

	st := e.State()
	assert.Equal(t, PhaseTransitioning, st.Phase)
	assert.Equal(t, "c", st.Pending.To)
	assert.Equal(t, "a", st.CurrentSceneID)

	rendered := len(r.calls)
	e.SceneLoaded("b")
	assert.Equal(t, st, e.State())
	assert.Len(t, r.calls, rendered)

	e.SceneLoaded("c")
	assert.Equal(t, "c", e.State().CurrentSceneID)
	assert.Nil(t, e.State().Pending)
}

// A hotspot whose target does not exist is a no-op that raises a fault.
func TestUnresolvedTarget_NoOpWithFault(t *testing.T) {
	e, r, h := started(t, testTour())
	before := e.State()
	calls := len(r.calls)

	e.HotspotActivated("broken")

	assert.Equal(t, before, e.State())
	assert.Len(t, r.calls, calls)
	require.Len(t, h.faults, 1)
	assert.Equal(t, FaultUnresolvedTarget, h.faults[0].Kind)
	assert.Equal(t, "gone", h.faults[0].SceneID)
	assert.Equal(t, "broken", h.faults[0].HotspotID)
}

func TestUnknownHotspot(t *testing.T) {
	e, _, h := started(t, testTour())
	e.HotspotActivated("nope")
	require.Len(t, h.faults, 1)
	assert.Equal(t, FaultUnknownHotspot, h.faults[0].Kind)

	tour := testTour()
	tour.Scenes[0].Hotspots[0].Payload = domain.UnknownPayload{Kind: "hologram"}
	e, _, h = started(t, tour)
	e.HotspotActivated("to-b")
	require.Len(t, h.faults, 1)
	assert.Equal(t, FaultUnsupportedHotspot, h.faults[0].Kind)
}

func TestSceneLoadFailed_ReturnsToOrigin(t *testing.T) {
	e, _, h := started(t, testTour())
	e.HotspotActivated("to-b")
	e.SceneLoadFailed("404")

	st := e.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, "a", st.CurrentSceneID)
	require.Len(t, h.faults, 1)
	assert.Equal(t, FaultSceneLoadFailed, h.faults[0].Kind)
	assert.Equal(t, "b", h.faults[0].SceneID)
	assert.Equal(t, "404", h.faults[0].Reason)

	// A load event after the failure changes nothing.
	e.SceneLoaded("b")
	assert.Equal(t, "a", e.State().CurrentSceneID)
}

func TestInfoHotspot_FocusesAndSuspendsAutorotate(t *testing.T) {
	tour := testTour()
	tour.Settings.Autorotate.Enabled = true
	e, r, _ := started(t, tour)
	assert.True(t, e.State().AutorotateActive)

	e.HotspotActivated("note")
	st := e.State()
	assert.Equal(t, "note", st.FocusedHotspotID)
	assert.True(t, st.AutorotateEnabled)
	assert.False(t, st.AutorotateActive)

	e.ClearFocus()
	st = e.State()
	assert.Empty(t, st.FocusedHotspotID)
	assert.True(t, st.AutorotateActive)
	assert.Equal(t, []bool{true, false, true}, r.autorotate)
}

func TestUserOrientation_SuspendsUntilResumed(t *testing.T) {
	tour := testTour()
	tour.Settings.Autorotate.Enabled = true
	e, _, _ := started(t, tour)

	e.UserOrientationChanged(200, 100, 10)
	st := e.State()
	assert.Equal(t, domain.View{Yaw: -160, Pitch: 90, FOV: 30}, st.Camera)
	assert.False(t, st.AutorotateActive)
	assert.True(t, st.AutorotateEnabled)

	// Entering another scene keeps the user suspension.
	e.Next()
	e.SceneLoaded("")
	assert.False(t, e.State().AutorotateActive)

	e.ResumeAutorotate()
	assert.True(t, e.State().AutorotateActive)
}

func TestUserOrientation_SeamIsNotAMove(t *testing.T) {
	tour := testTour()
	tour.Settings.Autorotate.Enabled = true
	e, _, _ := started(t, tour)
	e.HotspotActivated("to-c")
	e.SceneLoaded("c")
	require.Equal(t, 180.0, e.State().Camera.Yaw)
	e.ResumeAutorotate()

	e.UserOrientationChanged(-180, 5, 60)
	assert.True(t, e.State().AutorotateActive)
	assert.Equal(t, 180.0, e.State().Camera.Yaw)
}

func TestToggleAutorotate(t *testing.T) {
	e, r, _ := started(t, testTour())
	assert.False(t, e.State().AutorotateEnabled)

	e.ToggleAutorotate()
	assert.True(t, e.State().AutorotateActive)
	e.ToggleAutorotate()
	assert.False(t, e.State().AutorotateActive)
	assert.Equal(t, []bool{true, false}, r.autorotate)
}

func TestNextPrevious_Clamp(t *testing.T) {
	e, _, _ := started(t, testTour())

	assert.False(t, e.Previous())
	assert.True(t, e.Next())
	e.SceneLoaded("")
	assert.True(t, e.Next())
	e.SceneLoaded("")
	assert.Equal(t, "c", e.State().CurrentSceneID)
	assert.False(t, e.Next())
	assert.Nil(t, e.State().Pending)
}

func TestNextPrevious_Wrap(t *testing.T) {
	e, _, _ := started(t, testTour(), WithEdgePolicy(EdgeWrap))
	assert.True(t, e.Previous())
	assert.Equal(t, "c", e.State().Pending.To)
	e.SceneLoaded("")
	assert.True(t, e.Next())
	assert.Equal(t, "a", e.State().Pending.To)
}

func TestNext_RelativeToPendingTarget(t *testing.T) {
	e, _, _ := started(t, testTour())
	e.Next()
	e.Next()
	st := e.State()
	assert.Equal(t, "c", st.Pending.To)
	assert.Equal(t, "a", st.Pending.From)
}

func TestGoTo(t *testing.T) {
	e, _, h := started(t, testTour())
	assert.True(t, e.GoTo("c"))
	e.SceneLoaded("c")
	assert.Equal(t, "c", e.State().CurrentSceneID)

	assert.False(t, e.GoTo("zzz"))
	require.Len(t, h.faults, 1)
	assert.Equal(t, FaultUnknownScene, h.faults[0].Kind)
}

func TestEngine_IsolatedFromCallerTour(t *testing.T) {
	tour := testTour()
	e, _, _ := started(t, tour)
	tour.Scenes[1].ID = "renamed"
	assert.True(t, e.GoTo("b"))
}

func TestParseEdgePolicy(t *testing.T) {
	p, err := ParseEdgePolicy("WRAP")
	require.NoError(t, err)
	assert.Equal(t, EdgeWrap, p)
	p, err = ParseEdgePolicy("")
	require.NoError(t, err)
	assert.Equal(t, EdgeClamp, p)
	_, err = ParseEdgePolicy("bounce")
	assert.Error(t, err)
}

func TestFault_Error(t *testing.T) {
	f := Fault{Kind: FaultUnresolvedTarget, SceneID: "x", HotspotID: "h", Reason: "gone"}
	assert.Equal(t, "unresolved_target scene=x hotspot=h: gone", f.Error())
}
