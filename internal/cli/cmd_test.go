package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/alexanderramin/panotour/internal/authoring"
	"github.com/alexanderramin/panotour/internal/codec"
	"github.com/alexanderramin/panotour/internal/config"
	"github.com/alexanderramin/panotour/internal/db"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/alexanderramin/panotour/internal/repository"
	"github.com/alexanderramin/panotour/internal/service"
	"github.com/alexanderramin/panotour/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// testApp wires a full App on the lite tier over an in-memory DB, seeded
// with the given tours.
func testApp(t *testing.T, tours ...*domain.Tour) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteTourRepo(database)
	for _, tour := range tours {
		require.NoError(t, repo.Save(context.Background(), tour))
	}

	uow := db.NewSQLiteUnitOfWork(database)
	lite := limits.MustPolicy(limits.TierLite)
	return &App{
		Tours:     service.NewTourService(repo, lite),
		Authoring: service.NewAuthoringService(uow, lite),
		Import:    service.NewImportService(uow, lite),
		Export:    service.NewExportService(repo),
		Config: &config.Config{
			DBPath:     ":memory:",
			Tier:       string(limits.TierLite),
			LogLevel:   "info",
			LogFormat:  "text",
			EdgePolicy: "clamp",
		},
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		IsInteractive: func() bool { return false },
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stripANSI(buf.String()), err
}

func getTour(t *testing.T, app *App, id string) *domain.Tour {
	t.Helper()
	tour, err := app.Tours.Get(context.Background(), id)
	require.NoError(t, err)
	return tour
}

func museum() *domain.Tour {
	return testutil.NewTestTour("Museum", testutil.WithTourID("t-1"))
}

// --- tour ---

func TestTourNew_ThenList(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "tour", "new", "  Harbour walk ")
	require.NoError(t, err)
	assert.Contains(t, out, "Created tour Harbour walk (")

	out, err = executeCmd(t, app, "tour", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Harbour walk")
	assert.Contains(t, out, "SCENES")
}

func TestTourNew_BlankTitle(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "tour", "new", "   ")
	assert.ErrorIs(t, err, authoring.ErrTitleRequired)
}

func TestTourList_Empty(t *testing.T) {
	out, err := executeCmd(t, testApp(t), "tour", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tours yet")
}

func TestTourShow_ResolvesTitle(t *testing.T) {
	app := testApp(t, museum())

	out, err := executeCmd(t, app, "tour", "show", "museum")
	require.NoError(t, err)
	assert.Contains(t, out, "MUSEUM")
	assert.Contains(t, out, "id: t-1")
	assert.Contains(t, out, "Scene lobby")
	assert.Contains(t, out, "(to-hall)")
	assert.Contains(t, out, "→ hall")
}

func TestTourShow_JSON(t *testing.T) {
	app := testApp(t, museum())

	out, err := executeCmd(t, app, "tour", "show", "t-1", "--json")
	require.NoError(t, err)

	tours, err := codec.Decode([]byte(out))
	require.NoError(t, err)
	require.Len(t, tours, 1)
	assert.True(t, museum().Equal(tours[0]))
}

func TestResolveTourID(t *testing.T) {
	app := testApp(t,
		testutil.NewTestTour("Alpha", testutil.WithTourID("abc-1")),
		testutil.NewTestTour("Beta", testutil.WithTourID("abc-2")),
		testutil.NewTestTour("beta", testutil.WithTourID("xyz-3")),
	)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "exact id", input: "abc-2", want: "abc-2"},
		{name: "title ignores case", input: "ALPHA", want: "abc-1"},
		{name: "unique prefix", input: "xy", want: "xyz-3"},
		{name: "ambiguous title", input: "beta", wantErr: "ambiguous"},
		{name: "ambiguous prefix", input: "abc", wantErr: "ambiguous"},
		{name: "unknown", input: "nope", wantErr: "not found"},
		{name: "blank", input: "  ", wantErr: "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveTourID(ctx, app, tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTourDelete(t *testing.T) {
	app := testApp(t, museum())

	out, err := executeCmd(t, app, "tour", "rm", "t-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted tour t-1")

	_, err = app.Tours.Get(context.Background(), "t-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTourValidate_Stored(t *testing.T) {
	app := testApp(t, museum())

	out, err := executeCmd(t, app, "tour", "validate", "t-1")
	require.NoError(t, err)
	assert.Contains(t, out, "✔ valid")
}

func TestTourValidate_File(t *testing.T) {
	app := testApp(t)
	broken := testutil.NewTestTour("Broken", testutil.WithHotspot("lobby", domain.Hotspot{
		ID: "up", Title: "Attic", Payload: domain.ScenePayload{TargetSceneID: "attic"},
	}))
	data, err := codec.Export(broken)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err := executeCmd(t, app, "tour", "validate", "-f", path)
	assert.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, "✖ 1 error(s)")
	assert.Contains(t, out, "scenes[0].hotspots[2]")

	tours, err := app.Tours.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tours, "validate must not store anything")
}

func TestTourValidate_NeedsTarget(t *testing.T) {
	_, err := executeCmd(t, testApp(t), "tour", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file")
}

func TestTourEdit(t *testing.T) {
	app := testApp(t, museum())

	out, err := executeCmd(t, app, "tour", "edit", "t-1", "--title", "City Museum", "--description", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated tour City Museum")

	tour := getTour(t, app, "t-1")
	assert.Equal(t, "City Museum", tour.Title)
	assert.Empty(t, tour.Description)

	_, err = executeCmd(t, app, "tour", "edit", "t-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")
}

func TestTourStart(t *testing.T) {
	app := testApp(t, museum())

	_, err := executeCmd(t, app, "tour", "start", "t-1", "hall")
	require.NoError(t, err)
	assert.Equal(t, "hall", getTour(t, app, "t-1").InitialSceneID)

	_, err = executeCmd(t, app, "tour", "start", "t-1", "attic")
	assert.ErrorIs(t, err, authoring.ErrSceneNotFound)
}

func TestTourAutorotate(t *testing.T) {
	app := testApp(t, museum())

	_, err := executeCmd(t, app, "tour", "autorotate", "t-1", "--on", "--speed", "5")
	require.NoError(t, err)
	ar := getTour(t, app, "t-1").Settings.Autorotate
	assert.True(t, ar.Enabled)
	assert.Equal(t, 5.0, ar.Speed)

	_, err = executeCmd(t, app, "tour", "autorotate", "t-1", "--off")
	require.NoError(t, err)
	ar = getTour(t, app, "t-1").Settings.Autorotate
	assert.False(t, ar.Enabled)
	assert.Equal(t, 5.0, ar.Speed)
}

func TestTourAutorotate_BadFlags(t *testing.T) {
	app := testApp(t, museum())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"both", []string{"--on", "--off"}, "mutually exclusive"},
		{"none", nil, "nothing to change"},
		{"zero speed", []string{"--speed", "0"}, "positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"tour", "autorotate", "t-1"}, tt.args...)
			_, err := executeCmd(t, app, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// --- scene ---

func TestSceneAdd(t *testing.T) {
	app := testApp(t, museum())

	out, err := executeCmd(t, app, "scene", "add", "t-1", "--title", "Garden", "--image", "garden.jpg", "--fov", "70")
	require.NoError(t, err)
	assert.Contains(t, out, "Added scene garden")

	tour := getTour(t, app, "t-1")
	require.Len(t, tour.Scenes, 3)
	s := tour.Scenes[2]
	assert.Equal(t, "garden", s.ID)
	assert.Equal(t, domain.View{Yaw: 0, Pitch: 0, FOV: 70}, s.InitialView)
}

func TestSceneAdd_TierLimit(t *testing.T) {
	app := testApp(t, testutil.NewTestTour("Full", testutil.WithTourID("t-1"), testutil.WithScenes(5)))

	_, err := executeCmd(t, app, "scene", "add", "t-1", "--title", "Sixth")
	var v *limits.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, limits.CodeSceneLimit, v.Code)
	assert.Len(t, getTour(t, app, "t-1").Scenes, 5)
}

func TestSceneEdit_MergesView(t *testing.T) {
	app := testApp(t, museum())

	_, err := executeCmd(t, app, "scene", "edit", "t-1", "hall", "--pitch", "10")
	require.NoError(t, err)

	s, _ := getTour(t, app, "t-1").SceneByID("hall")
	require.NotNil(t, s)
	assert.Equal(t, domain.View{Yaw: 180, Pitch: 10, FOV: 80}, s.InitialView)

	_, err = executeCmd(t, app, "scene", "edit", "t-1", "hall")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")
}

func TestSceneRemove_ScrubsReferences(t *testing.T) {
	app := testApp(t, museum())

	out, err := executeCmd(t, app, "scene", "remove", "t-1", "hall")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed scene hall")
	assert.Contains(t, out, "scrubbed hotspot to-hall in lobby")

	tour := getTour(t, app, "t-1")
	require.Len(t, tour.Scenes, 1)
	_, i := tour.Scenes[0].HotspotByID("to-hall")
	assert.Equal(t, -1, i)
}

func TestSceneMove(t *testing.T) {
	app := testApp(t, museum())

	_, err := executeCmd(t, app, "scene", "move", "t-1", "hall", "--to", "1")
	require.NoError(t, err)
	tour := getTour(t, app, "t-1")
	assert.Equal(t, "hall", tour.Scenes[0].ID)
	assert.Equal(t, "lobby", tour.Scenes[1].ID)

	_, err = executeCmd(t, app, "scene", "move", "t-1", "hall", "--to", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--to")
}

// --- hotspot ---

func TestHotspotAdd(t *testing.T) {
	app := testApp(t, museum())

	out, err := executeCmd(t, app, "hotspot", "add", "t-1", "hall",
		"--id", "note", "--type", "info", "--title", "Note", "--text", "Mind the step", "--yaw", "190")
	require.NoError(t, err)
	assert.Contains(t, out, "Added hotspot note to scene hall")

	s, _ := getTour(t, app, "t-1").SceneByID("hall")
	h, _ := s.HotspotByID("note")
	require.NotNil(t, h)
	assert.Equal(t, domain.InfoPayload{Text: "Mind the step"}, h.Payload)
	assert.Equal(t, -170.0, h.Yaw)
}

func TestHotspotAdd_SceneTargetWithView(t *testing.T) {
	app := testApp(t, museum())

	_, err := executeCmd(t, app, "hs", "add", "t-1", "lobby",
		"--type", "scene", "--title", "Hall again", "--target", "hall", "--target-yaw", "30")
	require.NoError(t, err)

	s, _ := getTour(t, app, "t-1").SceneByID("lobby")
	require.Len(t, s.Hotspots, 3)
	p, ok := s.Hotspots[2].Payload.(domain.ScenePayload)
	require.True(t, ok)
	assert.Equal(t, "hall", p.TargetSceneID)
	require.NotNil(t, p.TargetView)
	assert.Equal(t, domain.View{Yaw: 30, Pitch: 0, FOV: domain.DefaultFOV}, *p.TargetView)
}

func TestHotspotAdd_Rejected(t *testing.T) {
	app := testApp(t, museum())

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, err error)
	}{
		{
			name: "missing type",
			args: []string{"--title", "X"},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, authoring.ErrTypeRequired)
			},
		},
		{
			name: "unknown type",
			args: []string{"--type", "portal", "--title", "X"},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, authoring.ErrUnknownType)
			},
		},
		{
			name: "type not on tier",
			args: []string{"--type", "video", "--title", "Clip", "--url", "https://video.example/a.mp4"},
			check: func(t *testing.T, err error) {
				var v *limits.Violation
				require.ErrorAs(t, err, &v)
				assert.Equal(t, limits.CodeHotspotTypeLimit, v.Code)
			},
		},
		{
			name: "unknown target",
			args: []string{"--type", "scene", "--title", "X", "--target", "attic"},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, authoring.ErrUnresolvedTarget)
			},
		},
		{
			name: "new validation error",
			args: []string{"--type", "link", "--title", "Shop", "--url", "not a url"},
			check: func(t *testing.T, err error) {
				var ve *service.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.True(t, ve.Result.HasCode("invalid_url"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"hotspot", "add", "t-1", "lobby"}, tt.args...)
			_, err := executeCmd(t, app, args...)
			require.Error(t, err)
			tt.check(t, err)
		})
	}

	s, _ := getTour(t, app, "t-1").SceneByID("lobby")
	assert.Len(t, s.Hotspots, 2)
}

func TestHotspotAdd_InteractiveNeedsTerminal(t *testing.T) {
	app := testApp(t, museum())

	_, err := executeCmd(t, app, "hotspot", "add", "t-1", "lobby", "-i")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal")
}

func TestHotspotEdit(t *testing.T) {
	app := testApp(t, museum())

	_, err := executeCmd(t, app, "hotspot", "edit", "t-1", "hall", "shop", "--new-window=false", "--title", "Gift shop")
	require.NoError(t, err)

	s, _ := getTour(t, app, "t-1").SceneByID("hall")
	h, _ := s.HotspotByID("shop")
	require.NotNil(t, h)
	assert.Equal(t, "Gift shop", h.Title)
	assert.Equal(t, domain.LinkPayload{URL: "https://shop.example", NewWindow: false}, h.Payload)
	assert.Equal(t, "cart", h.Icon)

	_, err = executeCmd(t, app, "hotspot", "edit", "t-1", "hall", "nope", "--title", "X")
	assert.ErrorIs(t, err, authoring.ErrHotspotNotFound)
}

func TestHotspotRetype(t *testing.T) {
	app := testApp(t, museum())

	_, err := executeCmd(t, app, "hotspot", "retype", "t-1", "lobby", "about", "--type", "link", "--url", "https://museum.example/about")
	require.NoError(t, err)

	s, _ := getTour(t, app, "t-1").SceneByID("lobby")
	h, _ := s.HotspotByID("about")
	require.NotNil(t, h)
	assert.Equal(t, domain.HotspotLink, h.Type())
	assert.Equal(t, "About", h.Title)
}

func TestHotspotRemoveAndMove(t *testing.T) {
	app := testApp(t, museum())

	_, err := executeCmd(t, app, "hotspot", "move", "t-1", "lobby", "about", "--to", "1")
	require.NoError(t, err)
	s, _ := getTour(t, app, "t-1").SceneByID("lobby")
	assert.Equal(t, "about", s.Hotspots[0].ID)

	_, err = executeCmd(t, app, "hotspot", "rm", "t-1", "lobby", "about")
	require.NoError(t, err)
	s, _ = getTour(t, app, "t-1").SceneByID("lobby")
	require.Len(t, s.Hotspots, 1)
	assert.Equal(t, "to-hall", s.Hotspots[0].ID)
}

// --- import / export ---

func writeDoc(t *testing.T, tours ...*domain.Tour) string {
	t.Helper()
	data, err := codec.ExportCollection(tours)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "tours.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestImport_CreateThenOverwrite(t *testing.T) {
	app := testApp(t)
	path := writeDoc(t, museum())

	out, err := executeCmd(t, app, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "created  Museum (t-1)")
	assert.Contains(t, out, "1 created, 0 replaced, 0 skipped")

	_, err = executeCmd(t, app, "import", path)
	assert.ErrorIs(t, err, service.ErrTourExists)

	out, err = executeCmd(t, app, "import", path, "--overwrite")
	require.NoError(t, err)
	assert.Contains(t, out, "0 created, 1 replaced, 0 skipped")
}

func TestImport_SkipInvalid(t *testing.T) {
	app := testApp(t)
	bad := testutil.NewTestTour("Bad", testutil.WithTourID("t-2"), testutil.WithInitialScene("attic"))
	path := writeDoc(t, museum(), bad)

	_, err := executeCmd(t, app, "import", path)
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "t-2", ve.TourID)

	out, err := executeCmd(t, app, "import", path, "--skip-invalid")
	require.NoError(t, err)
	assert.Contains(t, out, "skipped  Bad (t-2)")
	assert.Contains(t, out, "initialSceneId")

	tours, err := app.Tours.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tours, 1)
	assert.Equal(t, "t-1", tours[0].ID)
}

func TestImport_MissingFile(t *testing.T) {
	_, err := executeCmd(t, testApp(t), "import", filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestExport_ToFile(t *testing.T) {
	app := testApp(t, museum())
	path := filepath.Join(t.TempDir(), "museum.json")

	out, err := executeCmd(t, app, "export", "Museum", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tours, err := codec.Decode(data)
	require.NoError(t, err)
	require.Len(t, tours, 1)
	assert.True(t, museum().Equal(tours[0]))
}

func TestExport_All(t *testing.T) {
	app := testApp(t, museum(), testutil.NewTestTour("Harbour", testutil.WithTourID("t-2")))

	out, err := executeCmd(t, app, "export", "--all")
	require.NoError(t, err)
	tours, err := codec.Decode([]byte(out))
	require.NoError(t, err)
	assert.Len(t, tours, 2)

	_, err = executeCmd(t, app, "export", "t-1", "--all")
	require.Error(t, err)
	_, err = executeCmd(t, app, "export")
	require.Error(t, err)
}

// --- misc ---

func TestTiersCmd(t *testing.T) {
	out, err := executeCmd(t, testApp(t), "tiers")
	require.NoError(t, err)
	assert.Contains(t, out, "● lite")
	assert.Contains(t, out, "pro")
	assert.Contains(t, out, "unlimited")
	assert.Contains(t, out, "info, link, scene")
}

func TestPreviewCmd_NeedsTerminal(t *testing.T) {
	_, err := executeCmd(t, testApp(t, museum()), "preview", "t-1")
	assert.ErrorIs(t, err, errNotInteractive)
}
