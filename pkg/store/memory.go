package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/complyviz/complyviz/pkg/rulebase"
)

// MemoryStore is a process-local rule-base store for tests and
// single-binary usage. All operations copy on the way in and out, so
// callers can never alias internal state.
type MemoryStore struct {
	mu      sync.RWMutex
	rules   map[string]Rule
	groups  map[string]CountryGroup
	entries map[string]DictionaryEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rules:   make(map[string]Rule),
		groups:  make(map[string]CountryGroup),
		entries: make(map[string]DictionaryEntry),
	}
}

// LoadGraph materializes the current rule base as a domain graph.
func (s *MemoryStore) LoadGraph(ctx context.Context) (rulebase.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make([]Rule, 0, len(s.rules))
	for _, r := range s.rules {
		rules = append(rules, r)
	}
	groups := make([]CountryGroup, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, g)
	}
	entries := make([]DictionaryEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	return BuildDocument(rules, groups, entries), nil
}

// CreateRule stores a new rule, assigning an ID when absent.
func (s *MemoryStore) CreateRule(ctx context.Context, r Rule) (Rule, error) {
	if err := validateRule(r); err != nil {
		return Rule{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[r.ID]; exists {
		return Rule{}, fmt.Errorf("%w: rule %s already exists", ErrInvalidRecord, r.ID)
	}
	s.rules[r.ID] = r
	return r, nil
}

// UpdateRule replaces an existing rule.
func (s *MemoryStore) UpdateRule(ctx context.Context, r Rule) error {
	if err := validateRule(r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[r.ID]; !ok {
		return fmt.Errorf("rule %s: %w", r.ID, ErrNotFound)
	}
	s.rules[r.ID] = r
	return nil
}

// DeleteRule removes a rule.
func (s *MemoryStore) DeleteRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[id]; !ok {
		return fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	delete(s.rules, id)
	return nil
}

// CreateGroup stores a new country group, assigning an ID when absent.
func (s *MemoryStore) CreateGroup(ctx context.Context, g CountryGroup) (CountryGroup, error) {
	if err := validateGroup(g); err != nil {
		return CountryGroup{}, err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.groups[g.ID]; exists {
		return CountryGroup{}, fmt.Errorf("%w: group %s already exists", ErrInvalidRecord, g.ID)
	}
	s.groups[g.ID] = g
	return g, nil
}

// UpdateGroup replaces an existing country group.
func (s *MemoryStore) UpdateGroup(ctx context.Context, g CountryGroup) error {
	if err := validateGroup(g); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.ID]; !ok {
		return fmt.Errorf("group %s: %w", g.ID, ErrNotFound)
	}
	s.groups[g.ID] = g
	return nil
}

// DeleteGroup removes a country group. Rules keep their references; the
// dangling group IDs simply produce no edges on the next LoadGraph.
func (s *MemoryStore) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; !ok {
		return fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	delete(s.groups, id)
	return nil
}

// CreateEntry stores a new dictionary entry, assigning an ID when absent.
func (s *MemoryStore) CreateEntry(ctx context.Context, e DictionaryEntry) (DictionaryEntry, error) {
	if err := validateEntry(e); err != nil {
		return DictionaryEntry{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[e.ID]; exists {
		return DictionaryEntry{}, fmt.Errorf("%w: entry %s already exists", ErrInvalidRecord, e.ID)
	}
	s.entries[e.ID] = e
	return e, nil
}

// UpdateEntry replaces an existing dictionary entry.
func (s *MemoryStore) UpdateEntry(ctx context.Context, e DictionaryEntry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; !ok {
		return fmt.Errorf("entry %s: %w", e.ID, ErrNotFound)
	}
	s.entries[e.ID] = e
	return nil
}

// DeleteEntry removes a dictionary entry.
func (s *MemoryStore) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	delete(s.entries, id)
	return nil
}

// Source identifies the backend for cache keying.
func (s *MemoryStore) Source() string { return "memory" }

// Close does nothing for the memory backend.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
