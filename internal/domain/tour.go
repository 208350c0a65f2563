package domain

// Tour is the top-level document: the unit of authoring, storage, import and
// export. It owns its scenes, which own their hotspots.
type Tour struct {
	ID          string
	Title       string
	Description string

	// Scenes is nil when the document carried no scene list at all, which
	// validation treats as a structural error. An empty tour has a non-nil,
	// zero-length slice.
	Scenes         []Scene
	InitialSceneID string
	Settings       Settings

	// Defaulted lists the paths of fields that were absent on decode and
	// filled with defaults. It is provenance only: not exported, not part
	// of equality.
	Defaulted []string
}

// SceneByID returns the scene with the given id and its index, or (nil, -1).
func (t *Tour) SceneByID(id string) (*Scene, int) {
	if id == "" {
		return nil, -1
	}
	for i := range t.Scenes {
		if t.Scenes[i].ID == id {
			return &t.Scenes[i], i
		}
	}
	return nil, -1
}

// HasScene reports whether id resolves to a scene of this tour.
func (t *Tour) HasScene(id string) bool {
	_, i := t.SceneByID(id)
	return i >= 0
}

// StartScene resolves InitialSceneID, falling back to the first scene.
// It returns nil for a tour without scenes.
func (t *Tour) StartScene() *Scene {
	if s, _ := t.SceneByID(t.InitialSceneID); s != nil {
		return s
	}
	if len(t.Scenes) == 0 {
		return nil
	}
	return &t.Scenes[0]
}

// HotspotCount returns the number of hotspots across all scenes.
func (t *Tour) HotspotCount() int {
	n := 0
	for _, s := range t.Scenes {
		n += len(s.Hotspots)
	}
	return n
}

// Clone returns a deep copy that shares no mutable state with t.
func (t *Tour) Clone() *Tour {
	if t == nil {
		return nil
	}
	c := *t
	if t.Scenes != nil {
		c.Scenes = make([]Scene, len(t.Scenes))
		for i, s := range t.Scenes {
			c.Scenes[i] = s.clone()
		}
	}
	if t.Defaulted != nil {
		c.Defaulted = append([]string(nil), t.Defaulted...)
	}
	c.Settings = t.Settings.clone()
	return &c
}

// Equal reports semantic equality: same ids, field values and ordering.
// Defaulted provenance is ignored, and a nil hotspot list equals an empty one.
func (t *Tour) Equal(o *Tour) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.ID != o.ID || t.Title != o.Title || t.Description != o.Description || t.InitialSceneID != o.InitialSceneID {
		return false
	}
	if (t.Scenes == nil) != (o.Scenes == nil) || len(t.Scenes) != len(o.Scenes) {
		return false
	}
	for i := range t.Scenes {
		if !t.Scenes[i].equal(o.Scenes[i]) {
			return false
		}
	}
	return t.Settings.equal(o.Settings)
}
