package domain

// Scene is one panorama: an equirectangular image, the camera pose used on
// entry, and its hotspots in authoring order.
type Scene struct {
	ID          string
	Title       string
	Image       string
	InitialView View
	Hotspots    []Hotspot
}

// HotspotByID returns the hotspot with the given id and its index, or
// (nil, -1) if the scene has none.
func (s *Scene) HotspotByID(id string) (*Hotspot, int) {
	for i := range s.Hotspots {
		if s.Hotspots[i].ID == id {
			return &s.Hotspots[i], i
		}
	}
	return nil, -1
}

func (s Scene) clone() Scene {
	if s.Hotspots != nil {
		hs := make([]Hotspot, len(s.Hotspots))
		for i, h := range s.Hotspots {
			hs[i] = h.clone()
		}
		s.Hotspots = hs
	}
	return s
}

func (s Scene) equal(o Scene) bool {
	if s.ID != o.ID || s.Title != o.Title || s.Image != o.Image || s.InitialView != o.InitialView {
		return false
	}
	if len(s.Hotspots) != len(o.Hotspots) {
		return false
	}
	for i := range s.Hotspots {
		if !s.Hotspots[i].equal(o.Hotspots[i]) {
			return false
		}
	}
	return true
}
