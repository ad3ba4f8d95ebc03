// Package httpapi is the thin surface the browser console consumes. It maps
// HTTP verbs onto the store, the scanner, and the orchestrator; no attendance
// logic lives here.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"

	"github.com/timberhoa/rollcall/internal/attendance"
	"github.com/timberhoa/rollcall/internal/capture"
	"github.com/timberhoa/rollcall/internal/common"
	"github.com/timberhoa/rollcall/internal/logging"
	"github.com/timberhoa/rollcall/internal/models"
	"github.com/timberhoa/rollcall/internal/roster"
	"github.com/timberhoa/rollcall/internal/scan"
)

// Server wires the console components behind an HTTP router.
type Server struct {
	store    *roster.Store
	scanner  *scan.Scanner
	orch     *attendance.Orchestrator
	hub      *Hub
	uiOrigin string
	log      logging.Logger
}

// NewServer returns a Server over the given components.
func NewServer(store *roster.Store, scanner *scan.Scanner, orch *attendance.Orchestrator, hub *Hub, uiOrigin string, log logging.Logger) *Server {
	return &Server{
		store:    store,
		scanner:  scanner,
		orch:     orch,
		hub:      hub,
		uiOrigin: uiOrigin,
		log:      log.With("component", "httpapi"),
	}
}

// Router builds the chi router with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{s.uiOrigin},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(c.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/records", s.listRecords)
		r.Post("/records", s.createRecord)
		r.Patch("/records/{id}", s.updateRecord)
		r.Delete("/records/{id}", s.deleteRecord)
		r.Post("/records/{id}/present", s.markPresent)

		r.Put("/filter", s.setFilter)

		r.Get("/scan", s.scanStatus)
		r.Post("/scan/start", s.startScan)
		r.Post("/scan/stop", s.stopScan)
		r.Post("/scan/ack", s.ackScan)
		r.Post("/scan/result", s.scanResult)

		r.Post("/refresh", s.refresh)
		r.Post("/reset", s.reset)
	})

	r.Get("/ws", s.hub.Handle)

	return r
}

type recordsResponse struct {
	Records      []models.Record `json:"records"`
	Total        int             `json:"total"`
	Groups       int             `json:"groups"`
	PresentToday int             `json:"presentToday"`
	IsLoading    bool            `json:"isLoading"`
	Error        string          `json:"error,omitempty"`
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	group := r.URL.Query().Get("group")
	if query == "" && group == "" {
		// no explicit filter: serve the persisted one
		query, group = s.store.Filter()
	}

	resp := recordsResponse{
		Records:      s.store.Filtered(query, group),
		Total:        s.store.Count(),
		Groups:       s.store.GroupCount(),
		PresentToday: s.store.PresentCount(),
		IsLoading:    s.store.Loading(),
	}
	if err := s.store.Err(); err != nil {
		resp.Error = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		DisplayName string        `json:"displayName"`
		Group       string        `json:"group"`
		Status      models.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if payload.Status == "" {
		payload.Status = models.StatusAbsent
	}
	if !payload.Status.Valid() {
		s.writeError(w, r, http.StatusBadRequest, common.ErrInvalidStatus)
		return
	}

	created, err := s.store.CreateRemote(r.Context(), models.Record{
		DisplayName: payload.DisplayName,
		Group:       payload.Group,
		Status:      payload.Status,
	})
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch models.RecordPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if patch.Status != nil && !patch.Status.Valid() {
		s.writeError(w, r, http.StatusBadRequest, common.ErrInvalidStatus)
		return
	}

	if err := s.store.SaveRemote(r.Context(), id, patch); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	updated, _ := s.store.Get(id)
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveRemote(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) markPresent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.orch.ManualOverride(r.Context(), id); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	updated, _ := s.store.Get(id)
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) setFilter(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Query string `json:"query"`
		Group string `json:"group"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	s.store.SetFilter(payload.Query, payload.Group)
	w.WriteHeader(http.StatusNoContent)
}

type scanStatusResponse struct {
	State     string `json:"state"`
	LastError string `json:"lastError,omitempty"`
}

func (s *Server) scanStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, scanStatusResponse{
		State:     s.scanner.State().String(),
		LastError: s.scanner.LastError(),
	})
}

func (s *Server) startScan(w http.ResponseWriter, r *http.Request) {
	if err := s.scanner.StartScan(r.Context()); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.scanStatus(w, r)
}

func (s *Server) stopScan(w http.ResponseWriter, r *http.Request) {
	s.scanner.StopScan()
	s.scanStatus(w, r)
}

func (s *Server) ackScan(w http.ResponseWriter, r *http.Request) {
	s.scanner.Acknowledge()
	s.scanStatus(w, r)
}

func (s *Server) scanResult(w http.ResponseWriter, r *http.Request) {
	var res models.CaptureResult
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := s.scanner.Resolve(r.Context(), res); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.scanStatus(w, r)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	if err := s.store.FetchAll(r.Context()); err != nil {
		s.writeError(w, r, http.StatusBadGateway, err)
		return
	}
	s.listRecords(w, r)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reset(r.Context()); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= 500 {
		s.log.Error(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps component sentinel errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound), errors.Is(err, attendance.ErrUnknownSubject):
		return http.StatusNotFound
	case errors.Is(err, scan.ErrScanInProgress), errors.Is(err, scan.ErrNotScanning), errors.Is(err, roster.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, attendance.ErrLowConfidence):
		return http.StatusUnprocessableEntity
	case errors.Is(err, capture.ErrDeviceUnavailable), errors.Is(err, capture.ErrDeviceBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
