package testutil

import (
	"fmt"

	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/google/uuid"
)

type TourOption func(*domain.Tour)

func WithTourID(id string) TourOption {
	return func(t *domain.Tour) {
		t.ID = id
	}
}

func WithInitialScene(id string) TourOption {
	return func(t *domain.Tour) {
		t.InitialSceneID = id
	}
}

func WithAutorotate(enabled bool) TourOption {
	return func(t *domain.Tour) {
		t.Settings.Autorotate.Enabled = enabled
	}
}

// WithScenes replaces the scenes with n hotspot-free scenes s1..sn.
func WithScenes(n int) TourOption {
	return func(t *domain.Tour) {
		t.Scenes = make([]domain.Scene, 0, n)
		for i := 1; i <= n; i++ {
			t.Scenes = append(t.Scenes, NewTestScene(fmt.Sprintf("s%d", i)))
		}
		t.InitialSceneID = ""
	}
}

// WithHotspot appends h to the scene with the given id.
func WithHotspot(sceneID string, h domain.Hotspot) TourOption {
	return func(t *domain.Tour) {
		if s, _ := t.SceneByID(sceneID); s != nil {
			s.Hotspots = append(s.Hotspots, h)
		}
	}
}

// NewTestScene returns a renderable scene without hotspots.
func NewTestScene(id string) domain.Scene {
	return domain.Scene{
		ID:          id,
		Title:       "Scene " + id,
		Image:       "https://cdn.example/" + id + ".jpg",
		InitialView: domain.DefaultView(),
		Hotspots:    []domain.Hotspot{},
	}
}

// NewTestTour returns a valid two-scene tour: "lobby" links to "hall" and
// back, lobby has an info hotspot and hall has an external link.
func NewTestTour(title string, opts ...TourOption) *domain.Tour {
	lobby := NewTestScene("lobby")
	lobby.Hotspots = []domain.Hotspot{
		{ID: "to-hall", Title: "Hall", Yaw: 90, Payload: domain.ScenePayload{TargetSceneID: "hall"}},
		{ID: "about", Title: "About", Yaw: -30, Pitch: 10, Payload: domain.InfoPayload{Text: "Built in 1901."}},
	}
	hall := NewTestScene("hall")
	hall.InitialView = domain.View{Yaw: 180, Pitch: -5, FOV: 80}
	hall.Hotspots = []domain.Hotspot{
		{ID: "back", Title: "Lobby", Yaw: -90, Payload: domain.ScenePayload{TargetSceneID: "lobby", TargetView: &domain.View{Yaw: 45, FOV: 90}}},
		{ID: "shop", Title: "Shop", Yaw: 10, Payload: domain.LinkPayload{URL: "https://shop.example", NewWindow: true}, Icon: "cart"},
	}

	t := &domain.Tour{
		ID:             uuid.New().String(),
		Title:          title,
		Description:    "test tour",
		Scenes:         []domain.Scene{lobby, hall},
		InitialSceneID: "lobby",
		Settings:       domain.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
