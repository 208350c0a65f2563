package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/alexanderramin/panotour/internal/validator"
	"github.com/google/uuid"
)

// DecodeError reports input that cannot be read as a tour document at all.
// It is the only fatal import failure; everything else is a validation issue.
type DecodeError struct {
	Msg string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Msg, e.Err)
	}
	return "decode: " + e.Msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Imported is one decoded tour together with its validation outcome.
// Invalid tours are still returned so callers can show the issues.
type Imported struct {
	Tour   *domain.Tour
	Result validator.Result
	Valid  bool
}

// Import decodes data and validates every tour it contains against p.
func Import(data []byte, p limits.Policy) ([]Imported, error) {
	tours, err := Decode(data)
	if err != nil {
		return nil, err
	}
	out := make([]Imported, 0, len(tours))
	for _, t := range tours {
		res := validator.Validate(t, p)
		out = append(out, Imported{Tour: t, Result: res, Valid: res.Valid()})
	}
	return out, nil
}

// ReadFile reads and decodes a document file.
func ReadFile(path string) ([]*domain.Tour, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses either a single tour object or a {"tours": [...]} collection.
// Absent optional fields are filled with defaults and their paths recorded in
// Tour.Defaulted.
func Decode(data []byte) ([]*domain.Tour, error) {
	if !isObject(data) {
		return nil, &DecodeError{Msg: "document must be a JSON object"}
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &DecodeError{Msg: "invalid JSON", Err: err}
	}

	if _, ok := top["tours"]; !ok {
		t, err := decodeTour(data)
		if err != nil {
			return nil, err
		}
		return []*domain.Tour{t}, nil
	}

	var coll collectionJSON
	if err := json.Unmarshal(data, &coll); err != nil {
		return nil, &DecodeError{Msg: "tours must be a list", Err: err}
	}
	tours := make([]*domain.Tour, 0, len(coll.Tours))
	for i, raw := range coll.Tours {
		if !isObject(raw) {
			return nil, &DecodeError{Msg: fmt.Sprintf("tours[%d] must be a JSON object", i)}
		}
		t, err := decodeTour(raw)
		if err != nil {
			return nil, &DecodeError{Msg: fmt.Sprintf("tours[%d]", i), Err: err}
		}
		tours = append(tours, t)
	}
	return tours, nil
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

type decoder struct {
	defaulted []string
}

func (d *decoder) mark(path string) {
	d.defaulted = append(d.defaulted, path)
}

func decodeTour(raw []byte) (*domain.Tour, error) {
	var tj tourJSON
	if err := json.Unmarshal(raw, &tj); err != nil {
		return nil, &DecodeError{Msg: "invalid tour", Err: err}
	}
	settings, err := decodeSettings(tj.Settings)
	if err != nil {
		return nil, err
	}

	d := &decoder{}
	t := &domain.Tour{
		ID:             tj.ID,
		Title:          tj.Title,
		Description:    tj.Description,
		InitialSceneID: tj.InitialSceneID,
		Settings:       settings,
	}
	if strings.TrimSpace(t.ID) == "" {
		t.ID = uuid.NewString()
		d.mark("id")
	}
	if tj.Scenes != nil {
		t.Scenes = make([]domain.Scene, len(tj.Scenes))
		for i, sj := range tj.Scenes {
			t.Scenes[i] = d.scene(sj, fmt.Sprintf("scenes[%d]", i))
		}
	}
	t.Defaulted = d.defaulted
	return t, nil
}

func (d *decoder) scene(sj sceneJSON, prefix string) domain.Scene {
	s := domain.Scene{
		ID:          sj.ID,
		Title:       sj.Title,
		Image:       sj.Image,
		InitialView: d.view(sj.InitialView, prefix+".initialView"),
		Hotspots:    make([]domain.Hotspot, len(sj.Hotspots)),
	}
	for j, hj := range sj.Hotspots {
		s.Hotspots[j] = d.hotspot(hj, fmt.Sprintf("%s.hotspots[%d]", prefix, j))
	}
	return s
}

func (d *decoder) hotspot(hj hotspotJSON, prefix string) domain.Hotspot {
	h := domain.Hotspot{
		ID:       hj.ID,
		Title:    hj.Title,
		Yaw:      d.number(hj.Yaw, prefix+".yaw", 0),
		Pitch:    d.number(hj.Pitch, prefix+".pitch", 0),
		Icon:     hj.Icon,
		CSSClass: hj.CSSClass,
	}

	switch domain.HotspotType(strings.ToLower(strings.TrimSpace(hj.Type))) {
	case domain.HotspotInfo:
		h.Payload = domain.InfoPayload{Text: domain.Deref(hj.Text, "")}
	case domain.HotspotLink:
		h.Payload = domain.LinkPayload{
			URL:       domain.Deref(hj.URL, ""),
			NewWindow: bool(domain.Deref(hj.NewWindow, false)),
		}
	case domain.HotspotScene:
		p := domain.ScenePayload{TargetSceneID: domain.Deref(hj.TargetSceneID, "")}
		if hj.TargetView != nil {
			v := d.view(hj.TargetView, prefix+".targetView")
			p.TargetView = &v
		}
		h.Payload = p
	case domain.HotspotVideo:
		h.Payload = domain.VideoPayload{URL: domain.Deref(hj.URL, "")}
	default:
		h.Payload = domain.UnknownPayload{Kind: domain.HotspotType(hj.Type)}
	}
	return h
}

func (d *decoder) view(vj *viewJSON, path string) domain.View {
	if vj == nil {
		d.mark(path)
		return domain.DefaultView()
	}
	return domain.View{
		Yaw:   d.number(vj.Yaw, path+".yaw", 0),
		Pitch: d.number(vj.Pitch, path+".pitch", 0),
		FOV:   d.number(vj.FOV, path+".fov", domain.DefaultFOV),
	}
}

func (d *decoder) number(n *number, path string, fallback float64) float64 {
	if n == nil {
		d.mark(path)
		return fallback
	}
	return float64(*n)
}

func decodeSettings(raw json.RawMessage) (domain.Settings, error) {
	s := domain.DefaultSettings()
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return s, nil
	}
	if !isObject(raw) {
		return s, &DecodeError{Msg: "settings must be a JSON object"}
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return s, &DecodeError{Msg: "invalid settings", Err: err}
	}
	var sj settingsJSON
	if err := json.Unmarshal(raw, &sj); err != nil {
		return s, &DecodeError{Msg: "invalid settings", Err: err}
	}

	if a := sj.Autorotate; a != nil {
		s.Autorotate.Enabled = bool(domain.Deref(a.Enabled, flexBool(s.Autorotate.Enabled)))
		s.Autorotate.Speed = float64(domain.Deref(a.Speed, number(s.Autorotate.Speed)))
	}
	if c := sj.Controls; c != nil {
		s.Controls.Zoom = bool(domain.Deref(c.Zoom, flexBool(s.Controls.Zoom)))
		s.Controls.Fullscreen = bool(domain.Deref(c.Fullscreen, flexBool(s.Controls.Fullscreen)))
		s.Controls.Compass = bool(domain.Deref(c.Compass, flexBool(s.Controls.Compass)))
		s.Controls.SceneMenu = bool(domain.Deref(c.SceneMenu, flexBool(s.Controls.SceneMenu)))
	}
	if m := sj.Mobile; m != nil {
		s.Mobile.Gyroscope = bool(domain.Deref(m.Gyroscope, flexBool(s.Mobile.Gyroscope)))
		s.Mobile.TouchPan = bool(domain.Deref(m.TouchPan, flexBool(s.Mobile.TouchPan)))
	}
	s.Branding = domain.Deref(sj.Branding, "")

	for k, v := range all {
		if knownSettingsKeys[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return s, &DecodeError{Msg: "invalid settings." + k, Err: err}
		}
		if s.Extra == nil {
			s.Extra = make(map[string]any)
		}
		s.Extra[k] = val
	}
	return s, nil
}
