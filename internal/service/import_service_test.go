package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/panotour/internal/codec"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/alexanderramin/panotour/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImport_SingleTour(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewImportService(testutil.NewTestUoW(f.db), f.lite, f.obs)
	tour := testutil.NewTestTour("Single")

	report, err := svc.Import(ctx, exportDoc(t, tour), ImportOptions{})
	require.NoError(t, err)
	require.Len(t, report.Tours, 1)
	assert.Equal(t, ImportCreated, report.Tours[0].Status)
	assert.Equal(t, tour.ID, report.Tours[0].ID)

	stored, err := f.repo.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.True(t, tour.Equal(stored))

	ev := f.obs.last()
	assert.Equal(t, "tour.import", ev.Name)
	assert.Equal(t, 1, ev.Fields["created"])
}

func TestImport_Collection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewImportService(testutil.NewTestUoW(f.db), f.lite)
	a := testutil.NewTestTour("A")
	b := testutil.NewTestTour("B")

	report, err := svc.Import(ctx, exportDoc(t, a, b), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(ImportCreated))

	list, err := f.repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestImport_DecodeErrorIsFatal(t *testing.T) {
	f := newFixture(t)
	svc := NewImportService(testutil.NewTestUoW(f.db), f.lite)

	_, err := svc.Import(context.Background(), []byte(`{"id": `), ImportOptions{})
	var de *codec.DecodeError
	require.ErrorAs(t, err, &de)

	list, err := f.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImport_EmptyCollection(t *testing.T) {
	f := newFixture(t)
	svc := NewImportService(testutil.NewTestUoW(f.db), f.lite)

	_, err := svc.Import(context.Background(), []byte(`{"tours": []}`), ImportOptions{})
	assert.ErrorIs(t, err, ErrNoTours)
}

func TestImport_InvalidTourRejectsDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewImportService(testutil.NewTestUoW(f.db), f.lite)
	good := testutil.NewTestTour("Good")
	bad := testutil.NewTestTour("Bad", testutil.WithScenes(6))

	_, err := svc.Import(ctx, exportDoc(t, good, bad), ImportOptions{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, bad.ID, ve.TourID)
	assert.True(t, ve.Result.HasCode(string(limits.CodeSceneLimit)))

	ok, err := f.repo.Exists(ctx, good.ID)
	require.NoError(t, err)
	assert.False(t, ok, "valid tour must not be stored when the document is rejected")
}

func TestImport_SkipInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewImportService(testutil.NewTestUoW(f.db), f.lite)
	good := testutil.NewTestTour("Good")
	bad := testutil.NewTestTour("Bad", testutil.WithScenes(6))

	report, err := svc.Import(ctx, exportDoc(t, good, bad), ImportOptions{SkipInvalid: true})
	require.NoError(t, err)
	require.Len(t, report.Tours, 2)
	assert.Equal(t, ImportCreated, report.Tours[0].Status)
	assert.Equal(t, ImportSkipped, report.Tours[1].Status)
	assert.False(t, report.Tours[1].Result.Valid())

	ok, err := f.repo.Exists(ctx, bad.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestImport_ExistingTour(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewImportService(testutil.NewTestUoW(f.db), f.lite)
	tour := testutil.NewTestTour("Original")
	f.seed(t, tour)

	changed := tour.Clone()
	changed.Title = "Replacement"
	doc := exportDoc(t, changed)

	_, err := svc.Import(ctx, doc, ImportOptions{})
	require.ErrorIs(t, err, ErrTourExists)

	report, err := svc.Import(ctx, doc, ImportOptions{Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, ImportReplaced, report.Tours[0].Status)

	stored, err := f.repo.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, "Replacement", stored.Title)
}

func TestImport_DuplicateIDsInDocument(t *testing.T) {
	f := newFixture(t)
	svc := NewImportService(testutil.NewTestUoW(f.db), f.lite)
	a := testutil.NewTestTour("A", testutil.WithTourID("same"))
	b := testutil.NewTestTour("B", testutil.WithTourID("same"))

	_, err := svc.Import(context.Background(), exportDoc(t, a, b), ImportOptions{})
	assert.ErrorIs(t, err, ErrDuplicateTour)
}

func TestImport_RollbackOnSecondTourFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.NewTestTour("First")
	b := testutil.NewTestTour("Second")

	// INSERT INTO tours runs once per tour; the second one fails after the
	// first tour, its scenes and hotspots were written in the same tx.
	failUoW := &testutil.FailOnNthExecUoW{
		DB:     f.db,
		Match:  "INSERT INTO tours",
		FailOn: 2,
	}
	svc := NewImportService(failUoW, f.lite)

	_, err := svc.Import(ctx, exportDoc(t, a, b), ImportOptions{})
	require.ErrorIs(t, err, testutil.ErrInjected)

	list, err := f.repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	var scenes int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM scenes`).Scan(&scenes))
	assert.Zero(t, scenes)
}

func TestImport_RollbackKeepsExistingTour(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour := testutil.NewTestTour("Kept")
	f.seed(t, tour)

	replacement := tour.Clone()
	replacement.Title = "Broken replacement"
	failUoW := &testutil.FailOnNthExecUoW{
		DB:     f.db,
		Match:  "INSERT INTO hotspots",
		FailOn: 1,
	}
	svc := NewImportService(failUoW, f.lite)

	_, err := svc.Import(ctx, exportDoc(t, replacement), ImportOptions{Overwrite: true})
	require.ErrorIs(t, err, testutil.ErrInjected)

	stored, err := f.repo.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.True(t, tour.Equal(stored))
}

func TestImportFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewImportService(testutil.NewTestUoW(f.db), f.lite)
	tour := testutil.NewTestTour("From disk")
	path := filepath.Join(t.TempDir(), "tour.json")
	require.NoError(t, os.WriteFile(path, exportDoc(t, tour), 0o644))

	report, err := svc.ImportFile(ctx, path, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(ImportCreated))

	_, err = svc.ImportFile(ctx, filepath.Join(t.TempDir(), "missing.json"), ImportOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImport_DefaultsAppliedAndStored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewImportService(testutil.NewTestUoW(f.db), f.lite)
	doc := []byte(`{"id":"t1","title":"Sparse","scenes":[{"id":"a","title":"A","image":"a.jpg"}]}`)

	report, err := svc.Import(ctx, doc, ImportOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, report.Tours[0].Result.Warnings)

	stored, err := f.repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultView(), stored.Scenes[0].InitialView)
	assert.Empty(t, stored.Defaulted)
}
