package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/complyviz/complyviz/pkg/store"
)

// Mutation handlers follow one shape: validate via the store, invalidate the
// cached graph, notify event subscribers, respond. Clients are expected to
// refetch the graph on notification rather than patch local state.

// =============================================================================
// Rules
// =============================================================================

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var rule store.Rule
	if !decodeBody(w, r, &rule) {
		return
	}
	created, err := s.runner.Store.CreateRule(r.Context(), rule)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.graphChanged(r)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	var rule store.Rule
	if !decodeBody(w, r, &rule) {
		return
	}
	rule.ID = chi.URLParam(r, "id")
	if err := s.runner.Store.UpdateRule(r.Context(), rule); err != nil {
		writeStoreError(w, err)
		return
	}
	s.graphChanged(r)
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Store.DeleteRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	s.graphChanged(r)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Country Groups
// =============================================================================

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var group store.CountryGroup
	if !decodeBody(w, r, &group) {
		return
	}
	created, err := s.runner.Store.CreateGroup(r.Context(), group)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.graphChanged(r)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var group store.CountryGroup
	if !decodeBody(w, r, &group) {
		return
	}
	group.ID = chi.URLParam(r, "id")
	if err := s.runner.Store.UpdateGroup(r.Context(), group); err != nil {
		writeStoreError(w, err)
		return
	}
	s.graphChanged(r)
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Store.DeleteGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	s.graphChanged(r)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Dictionary Entries
// =============================================================================

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var entry store.DictionaryEntry
	if !decodeBody(w, r, &entry) {
		return
	}
	created, err := s.runner.Store.CreateEntry(r.Context(), entry)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.graphChanged(r)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var entry store.DictionaryEntry
	if !decodeBody(w, r, &entry) {
		return
	}
	entry.ID = chi.URLParam(r, "id")
	if err := s.runner.Store.UpdateEntry(r.Context(), entry); err != nil {
		writeStoreError(w, err)
		return
	}
	s.graphChanged(r)
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Store.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	s.graphChanged(r)
	w.WriteHeader(http.StatusNoContent)
}

// graphChanged invalidates the cached domain graph and notifies event
// subscribers after a successful mutation.
func (s *Server) graphChanged(r *http.Request) {
	if err := s.runner.InvalidateGraph(r.Context()); err != nil {
		s.logger.Warn("graph cache invalidation failed", "err", err)
	}
	s.events.Publish(EventGraphChanged)
}
