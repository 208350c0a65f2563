package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTourRepo_SaveAndGetByID(t *testing.T) {
	repo := NewSQLiteTourRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	tour := testutil.NewTestTour("Museum",
		testutil.WithHotspot("hall", domain.Hotspot{ID: "film", Title: "Film", Payload: domain.VideoPayload{URL: "https://v.example/a.mp4"}}),
		testutil.WithHotspot("hall", domain.Hotspot{ID: "odd", Title: "Odd", Payload: domain.UnknownPayload{Kind: "hologram"}, CSSClass: "x"}),
		testutil.WithAutorotate(true),
	)
	tour.Settings.Branding = "ACME"
	tour.Settings.Extra = map[string]any{"watermark": "bottom"}
	require.NoError(t, repo.Save(ctx, tour))

	got, err := repo.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.True(t, tour.Equal(got), "stored tour differs:\nwant %+v\ngot  %+v", tour, got)

	back, _ := got.Scenes[1].HotspotByID("back")
	require.NotNil(t, back)
	sp := back.Payload.(domain.ScenePayload)
	require.NotNil(t, sp.TargetView)
	assert.Equal(t, 45.0, sp.TargetView.Yaw)

	to, _ := got.Scenes[0].HotspotByID("to-hall")
	assert.Nil(t, to.Payload.(domain.ScenePayload).TargetView)
}

func TestTourRepo_GetByID_NotFound(t *testing.T) {
	repo := NewSQLiteTourRepo(testutil.NewTestDB(t))

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTourRepo_SaveReplacesContent(t *testing.T) {
	repo := NewSQLiteTourRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	tour := testutil.NewTestTour("Museum")
	require.NoError(t, repo.Save(ctx, tour))

	// Drop hall (and the hotspot pointing at it), reorder lobby's hotspots.
	tour.Scenes = tour.Scenes[:1]
	tour.Scenes[0].Hotspots = []domain.Hotspot{tour.Scenes[0].Hotspots[1]}
	tour.Title = "Renamed"
	require.NoError(t, repo.Save(ctx, tour))

	got, err := repo.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.True(t, tour.Equal(got))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Title)
	assert.Equal(t, 1, list[0].SceneCount)
	assert.Equal(t, 1, list[0].HotspotCount)
}

func TestTourRepo_StoresDanglingTarget(t *testing.T) {
	repo := NewSQLiteTourRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	tour := testutil.NewTestTour("Museum",
		testutil.WithHotspot("lobby", domain.Hotspot{ID: "ghost", Title: "Ghost", Payload: domain.ScenePayload{TargetSceneID: "attic"}}))
	require.NoError(t, repo.Save(ctx, tour))

	got, err := repo.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	h, _ := got.Scenes[0].HotspotByID("ghost")
	require.NotNil(t, h)
	target, _ := h.TargetSceneID()
	assert.Equal(t, "attic", target)
}

func TestTourRepo_ListOrderedByTitle(t *testing.T) {
	repo := NewSQLiteTourRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	for _, title := range []string{"Zoo", "Aquarium", "Museum"} {
		require.NoError(t, repo.Save(ctx, testutil.NewTestTour(title)))
	}
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Aquarium", list[0].Title)
	assert.Equal(t, "Zoo", list[2].Title)
	assert.Equal(t, 2, list[0].SceneCount)
	assert.Equal(t, 4, list[0].HotspotCount)
	assert.False(t, list[0].UpdatedAt.IsZero())
}

func TestTourRepo_ListEmpty(t *testing.T) {
	repo := NewSQLiteTourRepo(testutil.NewTestDB(t))
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestTourRepo_DeleteAndExists(t *testing.T) {
	repo := NewSQLiteTourRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	tour := testutil.NewTestTour("Museum")
	require.NoError(t, repo.Save(ctx, tour))

	ok, err := repo.Exists(ctx, tour.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Delete(ctx, tour.ID))
	ok, err = repo.Exists(ctx, tour.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, repo.Delete(ctx, tour.ID), domain.ErrNotFound)
}

func TestTourRepo_EmptyTourRoundTrips(t *testing.T) {
	repo := NewSQLiteTourRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	tour := testutil.NewTestTour("Empty", testutil.WithScenes(0))
	require.NoError(t, repo.Save(ctx, tour))
	got, err := repo.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Scenes)
	assert.Empty(t, got.Scenes)
}
