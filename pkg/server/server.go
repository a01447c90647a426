// Package server exposes the topic store over a small JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/elonfeng/ressa/internal/store"
	"github.com/elonfeng/ressa/pkg/export"
	"github.com/elonfeng/ressa/pkg/search"
	"github.com/elonfeng/ressa/pkg/suggest"
	"github.com/elonfeng/ressa/pkg/topic"
)

// Server provides the HTTP API.
type Server struct {
	store     *store.Store
	suggester suggest.Service
	port      int
}

// New creates a new HTTP server. suggester may be nil when no suggestion
// source is configured.
func New(s *store.Store, suggester suggest.Service, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{store: s, suggester: suggester, port: port}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/topics", s.handleListTopics)
	mux.HandleFunc("POST /api/v1/topics", s.handleAddTopic)
	mux.HandleFunc("GET /api/v1/topics/{id}", s.handleGetTopic)
	mux.HandleFunc("PUT /api/v1/topics/{id}", s.handleEditTitle)
	mux.HandleFunc("DELETE /api/v1/topics/{id}", s.handleDeleteTopic)
	mux.HandleFunc("POST /api/v1/topics/{id}/resources", s.handleAddResource)
	mux.HandleFunc("PUT /api/v1/topics/{id}/resources", s.handleEditResource)
	mux.HandleFunc("DELETE /api/v1/topics/{id}/resources", s.handleDeleteResource)
	mux.HandleFunc("POST /api/v1/topics/{id}/schedule", s.handleSchedule)
	mux.HandleFunc("DELETE /api/v1/topics/{id}/schedule", s.handleUnschedule)
	mux.HandleFunc("GET /api/v1/topics/{id}/export", s.handleExport)
	mux.HandleFunc("POST /api/v1/topics/{id}/suggest", s.handleSuggest)
	mux.HandleFunc("GET /api/v1/scheduled", s.handleScheduled)
	mux.HandleFunc("GET /api/v1/search", s.handleSearch)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("ressa server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	topics := s.store.Topics()
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  topics,
		"count": len(topics),
	})
}

func (s *Server) handleAddTopic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	t, err := s.store.AddTopic(r.Context(), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	t, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, store.ErrTopicNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleEditTitle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if err := s.store.EditTitle(r.Context(), r.PathValue("id"), req.Title); err != nil {
		writeError(w, err)
		return
	}
	t, _ := s.store.Get(r.PathValue("id"))
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTopic(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleAddResource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Resource topic.Resource `json:"resource"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if err := s.store.AddResource(r.Context(), r.PathValue("id"), req.Resource); err != nil {
		writeError(w, err)
		return
	}
	t, _ := s.store.Get(r.PathValue("id"))
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleEditResource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Old topic.Resource `json:"old"`
		New topic.Resource `json:"new"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if err := s.store.EditResource(r.Context(), r.PathValue("id"), req.Old, req.New); err != nil {
		writeError(w, err)
		return
	}
	t, _ := s.store.Get(r.PathValue("id"))
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Resource topic.Resource `json:"resource"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if err := s.store.DeleteResource(r.Context(), r.PathValue("id"), req.Resource); err != nil {
		writeError(w, err)
		return
	}
	t, _ := s.store.Get(r.PathValue("id"))
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if err := s.store.Schedule(r.Context(), r.PathValue("id"), req.Date, req.Time); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "scheduled"})
}

func (s *Server) handleUnschedule(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Unschedule(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unscheduled"})
}

func (s *Server) handleScheduled(w http.ResponseWriter, r *http.Request) {
	// Read repair: pull in any edits made to primary since scheduling.
	if err := s.store.Reconcile(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	scheduled := s.store.Scheduled()
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  scheduled,
		"count": len(scheduled),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	matches := search.Search(s.store.Topics(), r.URL.Query().Get("q"))

	type result struct {
		Topic     topic.Topic      `json:"topic"`
		Resources []topic.Resource `json:"resources"`
	}
	results := make([]result, 0, len(matches))
	for _, m := range matches {
		resources := m.Resources
		if resources == nil {
			resources = []topic.Resource{}
		}
		results = append(results, result{Topic: m.Topic, Resources: resources})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  results,
		"count": len(results),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	t, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, store.ErrTopicNotFound)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	var data []byte
	var err error
	switch format {
	case "json":
		data, err = export.JSON(t)
	case "pdf":
		_, err = export.PDF(t)
	case "docx":
		_, err = export.DOCX(t)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown format " + format})
		return
	}
	if err != nil {
		if errors.Is(err, export.ErrNotImplemented) {
			writeJSON(w, http.StatusNotImplemented, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(t, "json")))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if s.suggester == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no suggestion source configured"})
		return
	}

	t, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, store.ErrTopicNotFound)
		return
	}

	var req struct {
		Save bool `json:"save"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
			return
		}
	}

	content, err := s.suggester.FetchResources(r.Context(), t.Title)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	if req.Save {
		if err := s.store.SaveBundle(r.Context(), t.ID, store.DefaultBundleTitle, content); err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"resources": content,
		"saved":     req.Save,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrTopicNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrEmptyTitle), errors.Is(err, store.ErrEmptyResource):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
