package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/panotour/internal/cli/formatter"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/navigation"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	panStep    = 15.0
	zoomStep   = 10.0
	rotateTick = 100 * time.Millisecond
)

// sceneLoadedMsg reports that the terminal "renderer" finished loading the
// image for a scene.
type sceneLoadedMsg struct{ sceneID string }

// rotateMsg advances autorotation. gen discards ticks scheduled before the
// latest (re)start.
type rotateMsg struct{ gen int }

type previewModel struct {
	engine *navigation.Engine
	r      *termRenderer
	keys   previewKeyMap
	help   help.Model

	delay time.Duration

	// answered is the number of renderer loads already scheduled for
	// completion.
	answered int
	cursor   int
	rotGen   int
	rotating bool
	quitting bool
}

// newPreviewModel starts the engine; the start scene's load is answered
// by Init.
func newPreviewModel(engine *navigation.Engine, r *termRenderer, delay time.Duration) previewModel {
	engine.Start()
	return previewModel{
		engine:   engine,
		r:        r,
		keys:     defaultPreviewKeys(),
		help:     help.New(),
		delay:    delay,
		answered: r.loads,
	}
}

func (m previewModel) Init() tea.Cmd {
	return m.pendingLoad()
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case sceneLoadedMsg:
		m.engine.SceneLoaded(msg.sceneID)
		m.cursor = 0
		return m.settle()

	case rotateMsg:
		if msg.gen != m.rotGen || !m.r.rotating {
			m.rotating = false
			return m, nil
		}
		m.r.rotate(rotateTick.Seconds())
		return m, m.rotateCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m previewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cam := m.r.view
	m.r.clearStatus()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.engine.Next()
	case key.Matches(msg, m.keys.Previous):
		m.engine.Previous()
	case key.Matches(msg, m.keys.Jump):
		idx := int(msg.String()[0] - '1')
		if scenes := m.engine.Tour().Scenes; idx < len(scenes) {
			m.engine.GoTo(scenes[idx].ID)
		}
	case key.Matches(msg, m.keys.Up):
		if n := len(m.r.hotspots); n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if n := len(m.r.hotspots); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
		return m, nil
	case key.Matches(msg, m.keys.Activate):
		if m.cursor < len(m.r.hotspots) {
			m.engine.HotspotActivated(m.r.hotspots[m.cursor].ID)
		}
	case key.Matches(msg, m.keys.Dismiss):
		m.engine.ClearFocus()
	case key.Matches(msg, m.keys.Autorotate):
		m.engine.ToggleAutorotate()
	case key.Matches(msg, m.keys.Resume):
		m.engine.ResumeAutorotate()
	case key.Matches(msg, m.keys.PanLeft):
		m.look(cam.Yaw-panStep, cam.Pitch, cam.FOV)
	case key.Matches(msg, m.keys.PanRight):
		m.look(cam.Yaw+panStep, cam.Pitch, cam.FOV)
	case key.Matches(msg, m.keys.TiltUp):
		m.look(cam.Yaw, cam.Pitch+panStep, cam.FOV)
	case key.Matches(msg, m.keys.TiltDown):
		m.look(cam.Yaw, cam.Pitch-panStep, cam.FOV)
	case key.Matches(msg, m.keys.ZoomIn):
		m.look(cam.Yaw, cam.Pitch, cam.FOV-zoomStep)
	case key.Matches(msg, m.keys.ZoomOut):
		m.look(cam.Yaw, cam.Pitch, cam.FOV+zoomStep)
	default:
		return m, nil
	}
	return m.settle()
}

// look applies a user camera move. The engine records it; the renderer is
// what actually shows it.
func (m previewModel) look(yaw, pitch, fov float64) {
	if _, ok := m.engine.CurrentScene(); !ok {
		return
	}
	m.engine.UserOrientationChanged(yaw, pitch, fov)
	m.r.view = m.engine.State().Camera
}

// settle follows up an engine call: it answers any new scene load and
// starts the rotation ticker when autorotation became active.
func (m previewModel) settle() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.r.hotspots) {
		m.cursor = 0
	}
	var cmds []tea.Cmd
	if m.r.loads > m.answered {
		m.answered = m.r.loads
		cmds = append(cmds, m.pendingLoad())
	}
	if m.r.rotating && !m.rotating {
		m.rotating = true
		m.rotGen++
		cmds = append(cmds, m.rotateCmd())
	} else if !m.r.rotating {
		m.rotating = false
	}
	return m, tea.Batch(cmds...)
}

// pendingLoad completes the engine's pending transition after the
// configured delay. A zero delay completes it on the next update.
func (m previewModel) pendingLoad() tea.Cmd {
	p := m.engine.State().Pending
	if p == nil {
		return nil
	}
	msg := sceneLoadedMsg{sceneID: p.To}
	if m.delay <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(m.delay, func(time.Time) tea.Msg { return msg })
}

func (m previewModel) rotateCmd() tea.Cmd {
	gen := m.rotGen
	return tea.Tick(rotateTick, func(time.Time) tea.Msg { return rotateMsg{gen: gen} })
}

func (m previewModel) View() string {
	if m.quitting {
		return ""
	}
	t := m.engine.Tour()
	st := m.engine.State()

	var b strings.Builder
	b.WriteString(formatter.Header(t.Title))
	b.WriteString("\n\n")

	if sc, ok := m.engine.CurrentScene(); ok {
		_, idx := t.SceneByID(sc.ID)
		fmt.Fprintf(&b, "%s  %s\n", formatter.Bold(fmt.Sprintf("Scene %d/%d", idx+1, len(t.Scenes))), sceneLabel(sc))
		fmt.Fprintf(&b, "%s %s\n", formatter.Dim("image:"), sc.Image)
	} else {
		b.WriteString(formatter.Dim("No scene shown") + "\n")
	}
	if st.Pending != nil {
		target, _ := t.SceneByID(st.Pending.To)
		label := st.Pending.To
		if target != nil {
			label = sceneLabel(*target)
		}
		fmt.Fprintf(&b, "%s %s %s\n", formatter.StyleYellow.Render("Loading"), label, formatter.Dim(m.r.loading))
	}

	fmt.Fprintf(&b, "%s %s   %s %s\n",
		formatter.Dim("camera:"), formatter.FormatView(m.r.view),
		formatter.Dim("autorotate:"), autorotateLabel(st))

	b.WriteString("\n" + formatter.Bold("Hotspots") + "\n")
	if len(m.r.hotspots) == 0 {
		b.WriteString(formatter.Dim("  none") + "\n")
	}
	for i, h := range m.r.hotspots {
		marker := "  "
		if i == m.cursor {
			marker = formatter.StyleGreen.Render("> ")
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", marker, formatter.TypeBadge(h.Type()), hotspotLabel(h), formatter.Dim(h.ID))
	}

	if panel := m.focusPanel(st.FocusedHotspotID); panel != "" {
		b.WriteString("\n" + panel + "\n")
	}
	if status := m.status(); status != "" {
		b.WriteString("\n" + status + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m previewModel) focusPanel(id string) string {
	if id == "" {
		return ""
	}
	sc, ok := m.engine.CurrentScene()
	if !ok {
		return ""
	}
	h, _ := sc.HotspotByID(id)
	if h == nil {
		return ""
	}
	switch p := h.Payload.(type) {
	case domain.InfoPayload:
		return formatter.RenderBox(hotspotLabel(*h), p.Text)
	case domain.VideoPayload:
		return formatter.RenderBox(hotspotLabel(*h), "▶ "+p.URL)
	}
	return ""
}

func (m previewModel) status() string {
	if f := m.r.lastFault; f != nil {
		return formatter.StyleRed.Render("! " + f.Error())
	}
	if m.r.openedURL != "" {
		where := "same window"
		if m.r.newWindow {
			where = "new window"
		}
		return formatter.Dim(fmt.Sprintf("opened %s (%s)", m.r.openedURL, where))
	}
	return ""
}

func sceneLabel(s domain.Scene) string {
	if s.Title == "" {
		return s.ID
	}
	return fmt.Sprintf("%s (%s)", s.Title, s.ID)
}

func hotspotLabel(h domain.Hotspot) string {
	if h.Title != "" {
		return h.Title
	}
	if target, ok := h.TargetSceneID(); ok {
		return "to " + target
	}
	return "untitled"
}

func autorotateLabel(st navigation.State) string {
	switch {
	case st.AutorotateActive:
		return formatter.StyleGreen.Render("on")
	case st.AutorotateEnabled:
		return formatter.StyleYellow.Render("paused")
	default:
		return "off"
	}
}
