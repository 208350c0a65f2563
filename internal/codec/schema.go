package codec

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// tourJSON is the canonical document shape. The same types serve decoding
// and encoding; pointer fields distinguish "absent" from zero on decode.
type tourJSON struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Scenes         []sceneJSON     `json:"scenes"`
	InitialSceneID string          `json:"initialSceneId,omitempty"`
	Settings       json.RawMessage `json:"settings,omitempty"`
}

type sceneJSON struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Image       string        `json:"image"`
	InitialView *viewJSON     `json:"initialView"`
	Hotspots    []hotspotJSON `json:"hotspots"`
}

type viewJSON struct {
	Yaw   *number `json:"yaw"`
	Pitch *number `json:"pitch"`
	FOV   *number `json:"fov"`
}

type hotspotJSON struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Title string  `json:"title"`
	Yaw   *number `json:"yaw"`
	Pitch *number `json:"pitch"`

	Text          *string   `json:"text,omitempty"`
	URL           *string   `json:"url,omitempty"`
	NewWindow     *flexBool `json:"newWindow,omitempty"`
	TargetSceneID *string   `json:"targetSceneId,omitempty"`
	TargetView    *viewJSON `json:"targetView,omitempty"`

	Icon     string `json:"icon,omitempty"`
	CSSClass string `json:"cssClass,omitempty"`
}

// collectionJSON wraps several tours in one file.
type collectionJSON struct {
	Tours []json.RawMessage `json:"tours"`
}

// settingsJSON is the known part of the settings object. Unknown keys are
// kept separately so they survive a round trip.
type settingsJSON struct {
	Autorotate *struct {
		Enabled *flexBool `json:"enabled"`
		Speed   *number   `json:"speed"`
	} `json:"autorotate"`
	Controls *struct {
		Zoom       *flexBool `json:"zoom"`
		Fullscreen *flexBool `json:"fullscreen"`
		Compass    *flexBool `json:"compass"`
		SceneMenu  *flexBool `json:"sceneMenu"`
	} `json:"controls"`
	Mobile *struct {
		Gyroscope *flexBool `json:"gyroscope"`
		TouchPan  *flexBool `json:"touchPan"`
	} `json:"mobile"`
	Branding *string `json:"branding"`
}

var knownSettingsKeys = map[string]bool{
	"autorotate": true, "controls": true, "mobile": true, "branding": true,
}

// number accepts JSON numbers and numeric strings. Anything else that is not
// null decodes to NaN, which validation reports as not finite.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = number(parseFloat(s))
		return nil
	}
	*n = number(parseFloat(string(b)))
	return nil
}

// MarshalJSON writes non-finite values as strings, which encoding/json
// would otherwise refuse.
func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return json.Marshal(f)
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func num(f float64) *number {
	n := number(f)
	return &n
}

// flexBool accepts true/false, 1/0 and their string forms.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		*b = true
	default:
		*b = false
	}
	return nil
}

func (b flexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

func boolp(v bool) *flexBool {
	b := flexBool(v)
	return &b
}

func strp(s string) *string { return &s }
