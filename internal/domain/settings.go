package domain

import "reflect"

// Settings is global viewer configuration. Apart from Autorotate.Enabled,
// which the navigation engine exposes as state, the values are passed
// through to the renderer untouched.
type Settings struct {
	Autorotate Autorotate     `json:"autorotate"`
	Controls   Controls       `json:"controls"`
	Mobile     Mobile         `json:"mobile"`
	Branding   string         `json:"branding,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

type Autorotate struct {
	Enabled bool    `json:"enabled"`
	Speed   float64 `json:"speed"`
}

type Controls struct {
	Zoom       bool `json:"zoom"`
	Fullscreen bool `json:"fullscreen"`
	Compass    bool `json:"compass"`
	SceneMenu  bool `json:"sceneMenu"`
}

type Mobile struct {
	Gyroscope bool `json:"gyroscope"`
	TouchPan  bool `json:"touchPan"`
}

const DefaultAutorotateSpeed = 2.0

// DefaultSettings returns the settings of a freshly created tour.
func DefaultSettings() Settings {
	return Settings{
		Autorotate: Autorotate{Enabled: false, Speed: DefaultAutorotateSpeed},
		Controls:   Controls{Zoom: true, Fullscreen: true, Compass: false, SceneMenu: true},
		Mobile:     Mobile{Gyroscope: false, TouchPan: true},
	}
}

func (s Settings) clone() Settings {
	if s.Extra != nil {
		extra := make(map[string]any, len(s.Extra))
		for k, v := range s.Extra {
			extra[k] = v
		}
		s.Extra = extra
	}
	return s
}

func (s Settings) equal(o Settings) bool {
	if s.Autorotate != o.Autorotate || s.Controls != o.Controls || s.Mobile != o.Mobile || s.Branding != o.Branding {
		return false
	}
	if len(s.Extra) == 0 && len(o.Extra) == 0 {
		return true
	}
	return reflect.DeepEqual(s.Extra, o.Extra)
}
