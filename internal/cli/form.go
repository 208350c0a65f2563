package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/alexanderramin/panotour/internal/authoring"
	"github.com/alexanderramin/panotour/internal/cli/formatter"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func panotourHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// hotspotInput collects the answers of the interactive hotspot form.
type hotspotInput struct {
	sceneID string
	types   []domain.HotspotType
	scenes  []domain.Scene

	Type      string
	Title     string
	Yaw       string
	Pitch     string
	Text      string
	URL       string
	NewWindow bool
	Target    string
}

func newHotspotInput(t *domain.Tour, sceneID string, p limits.Policy) *hotspotInput {
	return &hotspotInput{
		sceneID: sceneID,
		types:   p.AllowedHotspotTypes,
		scenes:  t.Scenes,
		Type:    string(domain.HotspotInfo),
		Yaw:     "0",
		Pitch:   "0",
	}
}

func hotspotForm(in *hotspotInput) *huh.Form {
	typeOpts := make([]huh.Option[string], 0, len(in.types))
	for _, t := range in.types {
		typeOpts = append(typeOpts, huh.NewOption(string(t), string(t)))
	}
	sceneOpts := make([]huh.Option[string], 0, len(in.scenes))
	for _, s := range in.scenes {
		if s.ID == in.sceneID {
			continue
		}
		sceneOpts = append(sceneOpts, huh.NewOption(fmt.Sprintf("%s (%s)", s.Title, s.ID), s.ID))
	}

	hideUnless := func(t domain.HotspotType) func() bool {
		return func() bool { return in.Type != string(t) }
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Type").Options(typeOpts...).Value(&in.Type),
			huh.NewInput().Title("Title").Placeholder("Entrance").Value(&in.Title),
			huh.NewInput().Title("Yaw (-180..180)").Value(&in.Yaw).Validate(angleValidator(domain.MinYaw, domain.MaxYaw)),
			huh.NewInput().Title("Pitch (-90..90)").Value(&in.Pitch).Validate(angleValidator(domain.MinPitch, domain.MaxPitch)),
		),
		huh.NewGroup(
			huh.NewText().Title("Text").Value(&in.Text),
		).WithHideFunc(hideUnless(domain.HotspotInfo)),
		huh.NewGroup(
			huh.NewInput().Title("URL").Placeholder("https://").Value(&in.URL).Validate(validateAbsoluteURL),
			huh.NewConfirm().Title("Open in a new window?").Value(&in.NewWindow),
		).WithHideFunc(hideUnless(domain.HotspotLink)),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Target scene").Options(sceneOpts...).Value(&in.Target),
		).WithHideFunc(hideUnless(domain.HotspotScene)),
		huh.NewGroup(
			huh.NewInput().Title("Video URL").Placeholder("https://").Value(&in.URL).Validate(validateAbsoluteURL),
		).WithHideFunc(hideUnless(domain.HotspotVideo)),
	).WithTheme(panotourHuhTheme()).WithShowHelp(false)
}

// spec converts the answers into an authoring request.
func (in *hotspotInput) spec() (authoring.HotspotSpec, error) {
	yaw, err := parseAngle(in.Yaw)
	if err != nil {
		return authoring.HotspotSpec{}, fmt.Errorf("yaw: %w", err)
	}
	pitch, err := parseAngle(in.Pitch)
	if err != nil {
		return authoring.HotspotSpec{}, fmt.Errorf("pitch: %w", err)
	}

	var payload domain.Payload
	switch domain.HotspotType(in.Type) {
	case domain.HotspotInfo:
		payload = domain.InfoPayload{Text: in.Text}
	case domain.HotspotLink:
		payload = domain.LinkPayload{URL: in.URL, NewWindow: in.NewWindow}
	case domain.HotspotScene:
		payload = domain.ScenePayload{TargetSceneID: in.Target}
	case domain.HotspotVideo:
		payload = domain.VideoPayload{URL: in.URL}
	default:
		return authoring.HotspotSpec{}, fmt.Errorf("%w: %q", authoring.ErrUnknownType, in.Type)
	}
	return authoring.HotspotSpec{Title: strings.TrimSpace(in.Title), Yaw: yaw, Pitch: pitch, Payload: payload}, nil
}

func parseAngle(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !domain.IsFinite(v) {
		return 0, fmt.Errorf("enter a number")
	}
	return v, nil
}

func angleValidator(lo, hi float64) func(string) error {
	return func(s string) error {
		v, err := parseAngle(s)
		if err != nil {
			return err
		}
		if v < lo || v > hi {
			return fmt.Errorf("must be between %g and %g", lo, hi)
		}
		return nil
	}
}

func validateAbsoluteURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return fmt.Errorf("enter an absolute URL such as https://example.com")
	}
	return nil
}
