package codec

import (
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/panotour/internal/domain"
)

// Export renders a tour as an indented canonical JSON object.
func Export(t *domain.Tour) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("export: nil tour")
	}
	tj, err := encodeTour(t)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(tj, "", "  ")
}

// ExportCollection renders several tours wrapped as {"tours": [...]}.
func ExportCollection(tours []*domain.Tour) ([]byte, error) {
	out := struct {
		Tours []tourJSON `json:"tours"`
	}{Tours: make([]tourJSON, 0, len(tours))}
	for _, t := range tours {
		tj, err := encodeTour(t)
		if err != nil {
			return nil, err
		}
		out.Tours = append(out.Tours, tj)
	}
	return json.MarshalIndent(out, "", "  ")
}

func encodeTour(t *domain.Tour) (tourJSON, error) {
	settings, err := encodeSettings(t.Settings)
	if err != nil {
		return tourJSON{}, fmt.Errorf("export %s: %w", t.ID, err)
	}
	tj := tourJSON{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		InitialSceneID: t.InitialSceneID,
		Settings:       settings,
	}
	if t.Scenes != nil {
		tj.Scenes = make([]sceneJSON, len(t.Scenes))
		for i, s := range t.Scenes {
			tj.Scenes[i] = encodeScene(s)
		}
	}
	return tj, nil
}

func encodeScene(s domain.Scene) sceneJSON {
	sj := sceneJSON{
		ID:          s.ID,
		Title:       s.Title,
		Image:       s.Image,
		InitialView: encodeView(s.InitialView),
		Hotspots:    make([]hotspotJSON, len(s.Hotspots)),
	}
	for i, h := range s.Hotspots {
		sj.Hotspots[i] = encodeHotspot(h)
	}
	return sj
}

func encodeHotspot(h domain.Hotspot) hotspotJSON {
	hj := hotspotJSON{
		ID:       h.ID,
		Type:     string(h.Type()),
		Title:    h.Title,
		Yaw:      num(h.Yaw),
		Pitch:    num(h.Pitch),
		Icon:     h.Icon,
		CSSClass: h.CSSClass,
	}
	switch p := h.Payload.(type) {
	case domain.InfoPayload:
		hj.Text = strp(p.Text)
	case domain.LinkPayload:
		hj.URL = strp(p.URL)
		hj.NewWindow = boolp(p.NewWindow)
	case domain.ScenePayload:
		hj.TargetSceneID = strp(p.TargetSceneID)
		if p.TargetView != nil {
			hj.TargetView = encodeView(*p.TargetView)
		}
	case domain.VideoPayload:
		hj.URL = strp(p.URL)
	}
	return hj
}

func encodeView(v domain.View) *viewJSON {
	return &viewJSON{Yaw: num(v.Yaw), Pitch: num(v.Pitch), FOV: num(v.FOV)}
}

// encodeSettings flattens Extra back to top-level keys next to the known ones.
func encodeSettings(s domain.Settings) (json.RawMessage, error) {
	m := make(map[string]any, len(s.Extra)+4)
	for k, v := range s.Extra {
		m[k] = v
	}
	m["autorotate"] = map[string]any{"enabled": s.Autorotate.Enabled, "speed": number(s.Autorotate.Speed)}
	m["controls"] = s.Controls
	m["mobile"] = s.Mobile
	if s.Branding != "" {
		m["branding"] = s.Branding
	}
	return json.Marshal(m)
}
