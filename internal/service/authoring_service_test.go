package service

import (
	"context"
	"math"
	"testing"

	"github.com/alexanderramin/panotour/internal/authoring"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/alexanderramin/panotour/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthoringService_EditSaves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour := testutil.NewTestTour("Edit me")
	f.seed(t, tour)
	svc := NewAuthoringService(testutil.NewTestUoW(f.db), f.lite, f.obs)

	var newID string
	res, err := svc.Edit(ctx, tour.ID, func(t *domain.Tour, p limits.Policy) (*domain.Tour, error) {
		next, id, err := authoring.AddScene(t, authoring.SceneSpec{Title: "Garden", Image: "garden.jpg"}, p)
		newID = id
		return next, err
	})
	require.NoError(t, err)
	assert.Equal(t, "garden", newID)
	assert.True(t, res.Result.Valid())

	stored, err := f.repo.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasScene("garden"))
	assert.True(t, res.Tour.Equal(stored))
}

func TestAuthoringService_EditErrorLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour := testutil.NewTestTour("Full", testutil.WithScenes(5))
	f.seed(t, tour)
	svc := NewAuthoringService(testutil.NewTestUoW(f.db), f.lite, f.obs)

	_, err := svc.Edit(ctx, tour.ID, func(t *domain.Tour, p limits.Policy) (*domain.Tour, error) {
		next, _, err := authoring.AddScene(t, authoring.SceneSpec{Title: "Sixth"}, p)
		return next, err
	})
	var v *limits.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, limits.CodeSceneLimit, v.Code)

	stored, err := f.repo.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Scenes, 5)
	assert.False(t, f.obs.last().Success)
}

func TestAuthoringService_RejectsEditThatAddsErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour := testutil.NewTestTour("Guarded")
	f.seed(t, tour)
	svc := NewAuthoringService(testutil.NewTestUoW(f.db), f.lite)

	_, err := svc.Edit(ctx, tour.ID, func(t *domain.Tour, _ limits.Policy) (*domain.Tour, error) {
		c := t.Clone()
		c.Scenes[0].InitialView.FOV = math.Inf(1)
		return c, nil
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, tour.ID, ve.TourID)
	assert.Contains(t, err.Error(), "scenes[0].initialView.fov")

	stored, err := f.repo.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFOV, stored.Scenes[0].InitialView.FOV)
}

func TestAuthoringService_EditKeepsTourID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour := testutil.NewTestTour("Pinned")
	f.seed(t, tour)
	svc := NewAuthoringService(testutil.NewTestUoW(f.db), f.lite)

	res, err := svc.Edit(ctx, tour.ID, func(t *domain.Tour, _ limits.Policy) (*domain.Tour, error) {
		c := t.Clone()
		c.ID = "hijacked"
		return c, nil
	})
	require.NoError(t, err)
	assert.Equal(t, tour.ID, res.Tour.ID)

	ok, err := f.repo.Exists(ctx, "hijacked")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthoringService_EditMissingTour(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthoringService(testutil.NewTestUoW(f.db), f.lite)

	_, err := svc.Edit(context.Background(), "ghost", func(t *domain.Tour, _ limits.Policy) (*domain.Tour, error) {
		return t, nil
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuthoringService_DeleteSceneScrubsReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour := testutil.NewTestTour("Scrub")
	f.seed(t, tour)
	svc := NewAuthoringService(testutil.NewTestUoW(f.db), f.lite)

	res, err := svc.Edit(ctx, tour.ID, func(t *domain.Tour, _ limits.Policy) (*domain.Tour, error) {
		next, _, err := authoring.DeleteScene(t, "hall")
		return next, err
	})
	require.NoError(t, err)
	assert.True(t, res.Result.Valid())

	stored, err := f.repo.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, stored.Scenes, 1)
	for _, h := range stored.Scenes[0].Hotspots {
		target, ok := h.TargetSceneID()
		assert.False(t, ok && target == "hall", "hotspot %s still targets hall", h.ID)
	}
}
