package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/panotour/internal/db"
	"github.com/alexanderramin/panotour/internal/domain"
)

// SQLiteTourRepo implements TourRepo on the tours, scenes and hotspots
// tables. Save issues several statements; run it inside a UnitOfWork when
// the write must be atomic.
type SQLiteTourRepo struct {
	db db.DBTX
}

func NewSQLiteTourRepo(conn db.DBTX) *SQLiteTourRepo {
	return &SQLiteTourRepo{db: conn}
}

func (r *SQLiteTourRepo) Save(ctx context.Context, t *domain.Tour) error {
	settings, err := json.Marshal(t.Settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	now := nowUTC()

	query := `INSERT INTO tours (id, title, description, initial_scene_id, settings_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			initial_scene_id = excluded.initial_scene_id,
			settings_json = excluded.settings_json,
			updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.InitialSceneID, string(settings), now, now,
	); err != nil {
		return fmt.Errorf("upserting tour: %w", err)
	}

	// Replacing scenes cascades to their hotspots.
	if _, err := r.db.ExecContext(ctx, `DELETE FROM scenes WHERE tour_id = ?`, t.ID); err != nil {
		return fmt.Errorf("clearing scenes: %w", err)
	}
	for i, s := range t.Scenes {
		if err := r.insertScene(ctx, t.ID, i, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteTourRepo) insertScene(ctx context.Context, tourID string, pos int, s domain.Scene) error {
	query := `INSERT INTO scenes (tour_id, id, position, title, image, view_yaw, view_pitch, view_fov)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		tourID, s.ID, pos, s.Title, s.Image, s.InitialView.Yaw, s.InitialView.Pitch, s.InitialView.FOV,
	); err != nil {
		return fmt.Errorf("inserting scene %q: %w", s.ID, err)
	}
	for j, h := range s.Hotspots {
		if err := r.insertHotspot(ctx, tourID, s.ID, j, h); err != nil {
			return err
		}
	}
	return nil
}

// hotspotColumns is the flattened payload of a hotspot row.
type hotspotColumns struct {
	text, url, target  string
	newWindow          bool
	tYaw, tPitch, tFOV *float64
}

func payloadColumns(p domain.Payload) hotspotColumns {
	var c hotspotColumns
	switch pl := p.(type) {
	case domain.InfoPayload:
		c.text = pl.Text
	case domain.LinkPayload:
		c.url, c.newWindow = pl.URL, pl.NewWindow
	case domain.VideoPayload:
		c.url = pl.URL
	case domain.ScenePayload:
		c.target = pl.TargetSceneID
		if v := pl.TargetView; v != nil {
			c.tYaw, c.tPitch, c.tFOV = &v.Yaw, &v.Pitch, &v.FOV
		}
	}
	return c
}

func (r *SQLiteTourRepo) insertHotspot(ctx context.Context, tourID, sceneID string, pos int, h domain.Hotspot) error {
	c := payloadColumns(h.Payload)
	query := `INSERT INTO hotspots (tour_id, scene_id, id, position, type, title, yaw, pitch,
			text, url, new_window, target_scene_id, target_yaw, target_pitch, target_fov, icon, css_class)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		tourID, sceneID, h.ID, pos, string(h.Type()), h.Title, h.Yaw, h.Pitch,
		c.text, c.url, boolToInt(c.newWindow), c.target,
		nullableFloat(c.tYaw), nullableFloat(c.tPitch), nullableFloat(c.tFOV),
		h.Icon, h.CSSClass,
	); err != nil {
		return fmt.Errorf("inserting hotspot %q of scene %q: %w", h.ID, sceneID, err)
	}
	return nil
}

func (r *SQLiteTourRepo) GetByID(ctx context.Context, id string) (*domain.Tour, error) {
	var t domain.Tour
	var settings string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, initial_scene_id, settings_json FROM tours WHERE id = ?`, id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.InitialSceneID, &settings)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tour %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading tour: %w", err)
	}
	t.Settings = domain.DefaultSettings()
	if err := json.Unmarshal([]byte(settings), &t.Settings); err != nil {
		return nil, fmt.Errorf("decoding settings of tour %q: %w", id, err)
	}

	if t.Scenes, err = r.loadScenes(ctx, id); err != nil {
		return nil, err
	}
	if err := r.loadHotspots(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *SQLiteTourRepo) loadScenes(ctx context.Context, tourID string) ([]domain.Scene, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, image, view_yaw, view_pitch, view_fov FROM scenes WHERE tour_id = ? ORDER BY position`, tourID)
	if err != nil {
		return nil, fmt.Errorf("loading scenes: %w", err)
	}
	defer rows.Close()

	scenes := []domain.Scene{}
	for rows.Next() {
		s := domain.Scene{Hotspots: []domain.Hotspot{}}
		if err := rows.Scan(&s.ID, &s.Title, &s.Image, &s.InitialView.Yaw, &s.InitialView.Pitch, &s.InitialView.FOV); err != nil {
			return nil, fmt.Errorf("scanning scene: %w", err)
		}
		scenes = append(scenes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scenes: %w", err)
	}
	return scenes, nil
}

func (r *SQLiteTourRepo) loadHotspots(ctx context.Context, t *domain.Tour) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT scene_id, id, type, title, yaw, pitch, text, url, new_window,
			target_scene_id, target_yaw, target_pitch, target_fov, icon, css_class
		FROM hotspots WHERE tour_id = ? ORDER BY scene_id, position`, t.ID)
	if err != nil {
		return fmt.Errorf("loading hotspots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sceneID, kind, text, url, target string
			newWindow                        int
			tYaw, tPitch, tFOV               sql.NullFloat64
			h                                domain.Hotspot
		)
		if err := rows.Scan(&sceneID, &h.ID, &kind, &h.Title, &h.Yaw, &h.Pitch, &text, &url, &newWindow,
			&target, &tYaw, &tPitch, &tFOV, &h.Icon, &h.CSSClass); err != nil {
			return fmt.Errorf("scanning hotspot: %w", err)
		}

		switch domain.HotspotType(kind) {
		case domain.HotspotInfo:
			h.Payload = domain.InfoPayload{Text: text}
		case domain.HotspotLink:
			h.Payload = domain.LinkPayload{URL: url, NewWindow: intToBool(newWindow)}
		case domain.HotspotVideo:
			h.Payload = domain.VideoPayload{URL: url}
		case domain.HotspotScene:
			p := domain.ScenePayload{TargetSceneID: target}
			if allValid(tYaw, tPitch, tFOV) {
				p.TargetView = &domain.View{Yaw: tYaw.Float64, Pitch: tPitch.Float64, FOV: tFOV.Float64}
			}
			h.Payload = p
		default:
			h.Payload = domain.UnknownPayload{Kind: domain.HotspotType(kind)}
		}

		s, _ := t.SceneByID(sceneID)
		if s == nil {
			return fmt.Errorf("hotspot %q references missing scene %q", h.ID, sceneID)
		}
		s.Hotspots = append(s.Hotspots, h)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating hotspots: %w", err)
	}
	return nil
}

func (r *SQLiteTourRepo) List(ctx context.Context) ([]TourSummary, error) {
	query := `SELECT t.id, t.title, t.updated_at,
			(SELECT COUNT(*) FROM scenes s WHERE s.tour_id = t.id),
			(SELECT COUNT(*) FROM hotspots h WHERE h.tour_id = t.id)
		FROM tours t ORDER BY t.title, t.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tours: %w", err)
	}
	defer rows.Close()

	out := []TourSummary{}
	for rows.Next() {
		var s TourSummary
		var updated string
		if err := rows.Scan(&s.ID, &s.Title, &updated, &s.SceneCount, &s.HotspotCount); err != nil {
			return nil, fmt.Errorf("scanning tour summary: %w", err)
		}
		s.UpdatedAt = parseTime(updated)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tours: %w", err)
	}
	return out, nil
}

// Delete removes a tour; its scenes and hotspots go with it.
func (r *SQLiteTourRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tours WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting tour: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting tour: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("tour %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteTourRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tours WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking tour: %w", err)
	}
	return exists, nil
}

var _ TourRepo = (*SQLiteTourRepo)(nil)
