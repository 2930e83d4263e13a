package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/windguide/internal/models"
	"github.com/hyperjump/windguide/internal/storage"
	"github.com/hyperjump/windguide/pkg/apperr"
)

const maxBodyBytes = 512 << 10

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearchQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.search(w, r, q)
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var q models.SearchQuery
	if err := decodeJSON(w, r, &q); err != nil {
		s.respondError(w, err)
		return
	}
	s.search(w, r, &q)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, q *models.SearchQuery) {
	if q.Limit < 0 {
		s.respondError(w, apperr.New(apperr.ErrInvalidInput, "limit must not be negative"))
		return
	}
	resp, err := s.service.Search(r.Context(), q)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// parseSearchQuery reads q, limit, group and suggest from the URL. Suggestions
// are on unless suggest=false.
func parseSearchQuery(r *http.Request) (*models.SearchQuery, error) {
	v := r.URL.Query()
	q := &models.SearchQuery{Query: v.Get("q"), Suggest: true}
	if q.Query == "" {
		q.Query = v.Get("query")
	}
	if raw := v.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperr.Newf(apperr.ErrInvalidInput, "invalid limit %q", raw)
		}
		q.Limit = n
	}
	var err error
	if q.GroupBySection, err = parseBool(v.Get("group"), false); err != nil {
		return nil, apperr.Newf(apperr.ErrInvalidInput, "invalid group %q", v.Get("group"))
	}
	if q.Suggest, err = parseBool(v.Get("suggest"), true); err != nil {
		return nil, apperr.Newf(apperr.ErrInvalidInput, "invalid suggest %q", v.Get("suggest"))
	}
	return q, nil
}

func parseBool(raw string, def bool) (bool, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseBool(raw)
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req models.HighlightRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	resp, err := s.service.Highlight(r.Context(), &req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sections": s.service.Sections(),
	})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.service.Entry(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleHints(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"hints": s.service.Hints(),
	})
}

func (s *Server) handleTopQueries(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, apperr.Newf(apperr.ErrInvalidInput, "invalid limit %q", raw))
			return
		}
		limit = n
	}
	stats, err := s.service.TopQueries(r.Context(), limit)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"queries": stats,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.service.Status(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	out := map[string]interface{}{
		"status":  status,
		"version": s.version,
	}
	if s.config.Storage.QueryLog {
		if size, err := storage.DatabaseSize(s.config.Storage.DatabasePath); err == nil {
			out["database_bytes"] = size
		}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return apperr.New(apperr.ErrInvalidInput, "content type must be application/json")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.New(apperr.ErrInvalidInput, "request body too large")
		}
		return apperr.Newf(apperr.ErrInvalidInput, "invalid request body: %v", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	respondJSON(w, status, map[string]string{
		"error": apperr.Message(err),
	})
}
