package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexanderramin/panotour/internal/codec"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/alexanderramin/panotour/internal/service"
	"github.com/alexanderramin/panotour/internal/validator"
	"github.com/go-chi/chi/v5"
)

type handlers struct {
	tours   service.TourService
	imports service.ImportService
	exports service.ExportService
	logger  *slog.Logger
	maxBody int64
}

type errorBody struct {
	Error  string            `json:"error"`
	Result *validator.Result `json:"result,omitempty"`
}

type checkedTour struct {
	ID     string           `json:"id"`
	Title  string           `json:"title"`
	Valid  bool             `json:"valid"`
	Result validator.Result `json:"result"`
}

type tiersBody struct {
	Current limits.Tier     `json:"current"`
	Tiers   []limits.Policy `json:"tiers"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) tiers(w http.ResponseWriter, _ *http.Request) {
	body := tiersBody{Current: h.tours.Policy().Tier}
	for _, t := range limits.Tiers() {
		body.Tiers = append(body.Tiers, limits.MustPolicy(t))
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *handlers) listTours(w http.ResponseWriter, r *http.Request) {
	list, err := h.tours.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handlers) getTour(w http.ResponseWriter, r *http.Request) {
	data, err := h.exports.Export(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handlers) deleteTour(w http.ResponseWriter, r *http.Request) {
	if err := h.tours.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) tourValidation(w http.ResponseWriter, r *http.Request) {
	res, err := h.tours.Validate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) validate(w http.ResponseWriter, r *http.Request) {
	data, err := h.readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	checked, err := h.tours.Check(r.Context(), data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]checkedTour, 0, len(checked))
	for _, c := range checked {
		out = append(out, checkedTour{ID: c.Tour.ID, Title: c.Tour.Title, Valid: c.Valid, Result: c.Result})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) importTours(w http.ResponseWriter, r *http.Request) {
	data, err := h.readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	opts := service.ImportOptions{
		Overwrite:   queryBool(r, "overwrite"),
		SkipInvalid: queryBool(r, "skipInvalid"),
	}
	report, err := h.imports.Import(r.Context(), data, opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (h *handlers) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		return nil, &codec.DecodeError{Msg: "reading request body", Err: err}
	}
	return data, nil
}

// fail maps service errors onto status codes.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		decodeErr *codec.DecodeError
		validErr  *service.ValidationError
		maxErr    *http.MaxBytesError
	)
	status := http.StatusInternalServerError
	body := errorBody{Error: err.Error()}
	switch {
	case errors.As(err, &maxErr):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &decodeErr),
		errors.Is(err, service.ErrNoTours),
		errors.Is(err, service.ErrDuplicateTour):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrTourExists):
		status = http.StatusConflict
	case errors.As(err, &validErr):
		status = http.StatusUnprocessableEntity
		body.Result = &validErr.Result
	}
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
