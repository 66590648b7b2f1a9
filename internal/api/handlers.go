package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	cverrors "github.com/complyviz/complyviz/pkg/errors"
	"github.com/complyviz/complyviz/pkg/layout"
	"github.com/complyviz/complyviz/pkg/pipeline"
	"github.com/complyviz/complyviz/pkg/rulebase"
)

// graphResponse is the GET /api/graph payload.
type graphResponse struct {
	Document  rulebase.Document `json:"document"`
	GraphHash string            `json:"graph_hash"`
}

// layoutResponse is the POST /api/layout payload. Artifacts are keyed by
// format; binary formats arrive base64-encoded per encoding/json.
type layoutResponse struct {
	GraphHash string             `json:"graph_hash"`
	Layout    layout.Result      `json:"layout"`
	Artifacts map[string][]byte  `json:"artifacts,omitempty"`
	CacheInfo pipeline.CacheInfo `json:"cache_info"`
}

// handleGraph returns the current domain graph.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Refresh: r.URL.Query().Get("refresh") == "true",
		Formats: []string{pipeline.FormatJSON},
		Logger:  s.logger,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, cverrors.ErrCodeStore, cverrors.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, graphResponse{
		Document:  result.Document,
		GraphHash: result.GraphHash,
	})
}

// handleLayout runs the full pipeline for the posted options.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if !decodeBody(w, r, &opts) {
		return
	}
	opts.Logger = s.logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, http.StatusBadRequest, cverrors.ErrCodeInvalidInput, err.Error())
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, cverrors.ErrCodeInternal, cverrors.UserMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		GraphHash: result.GraphHash,
		Layout:    result.Layout,
		Artifacts: result.Artifacts,
		CacheInfo: result.CacheInfo,
	})
}

// handleActions returns the context menu for a node in the current graph.
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.runner.Fetch(r.Context(), pipeline.Options{Logger: s.logger})
	if err != nil {
		writeError(w, http.StatusInternalServerError, cverrors.ErrCodeStore, cverrors.UserMessage(err))
		return
	}
	node, ok := doc.Node(id)
	if !ok {
		writeError(w, http.StatusNotFound, cverrors.ErrCodeNotFound, "node not found: "+id)
		return
	}

	actions := layout.ActionsFor(node)
	if actions == nil {
		actions = []layout.ContextAction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"actions": actions,
	})
}
