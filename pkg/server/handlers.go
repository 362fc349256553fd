package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stickycols/pkg/buildinfo"
	"github.com/matzehuels/stickycols/pkg/errors"
	"github.com/matzehuels/stickycols/pkg/render"
	"github.com/matzehuels/stickycols/pkg/scene"
	"github.com/matzehuels/stickycols/pkg/trace"
)

// CacheHeader reports whether a simulate response came from the cache.
const CacheHeader = "X-Cache"

var graphContentTypes = map[string]string{
	"dot": "text/vnd.graphviz; charset=utf-8",
	"svg": "image/svg+xml",
	"png": "image/png",
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.writeError(w, r, errors.New(errors.ErrCodeTooLarge, "scene exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}

	sc, err := scene.Parse(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	refresh := false
	if v := r.URL.Query().Get("refresh"); v != "" {
		if refresh, err = strconv.ParseBool(v); err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "refresh must be a boolean, got %q", v))
			return
		}
	}

	t, hit, err := s.runner.RunWithCacheInfo(r.Context(), sc, refresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if hit {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
	s.logger.Info("simulated scene",
		"scene", sc.Name,
		"frames", len(t.Frames),
		"cached", hit,
		"request_id", RequestID(r.Context()))
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "svg"
	}
	out, err := render.Graph(r.Context(), t, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", graphContentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "frame index must be an integer"))
		return
	}
	if n < 0 || n >= len(t.Frames) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "trace has %d frames", len(t.Frames)))
		return
	}

	opts := render.FrameOptions{Renderer: lipgloss.NewRenderer(io.Discard)}
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"width", &opts.Width}, {"height", &opts.Height}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		if *p.dst, err = strconv.Atoi(v); err != nil || *p.dst < 1 || *p.dst > 500 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "%s must be between 1 and 500", p.name))
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, render.Frame(t.Frames[n], t.Viewport, opts)+"\n")
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*trace.Trace, bool) {
	t, err := s.runner.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return t, true
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeErrorStatus(w, r, errors.HTTPStatus(err), err)
}

func (s *Server) writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" || code == errors.ErrCodeInternal {
		s.logger.Error("request failed", "error", err, "request_id", RequestID(r.Context()))
		code, msg = errors.ErrCodeInternal, "internal error"
	}
	s.writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   msg,
		RequestID: RequestID(r.Context()),
	}})
}
