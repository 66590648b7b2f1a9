package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Seed is the JSON shape of a rule-base seed file: the three collections,
// with explicit IDs so seeded data is stable across restarts.
type Seed struct {
	Rules   []Rule            `json:"rules"`
	Groups  []CountryGroup    `json:"groups"`
	Entries []DictionaryEntry `json:"entries"`
}

// LoadSeedFile reads a seed file and inserts its records into the store.
// Records are validated through the normal create path, so a seed file
// cannot smuggle in data the API would reject.
func LoadSeedFile(ctx context.Context, s Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed %s: %w", path, err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed %s: %w", path, err)
	}

	for _, g := range seed.Groups {
		if _, err := s.CreateGroup(ctx, g); err != nil {
			return fmt.Errorf("seed group %s: %w", g.ID, err)
		}
	}
	for _, r := range seed.Rules {
		if _, err := s.CreateRule(ctx, r); err != nil {
			return fmt.Errorf("seed rule %s: %w", r.ID, err)
		}
	}
	for _, e := range seed.Entries {
		if _, err := s.CreateEntry(ctx, e); err != nil {
			return fmt.Errorf("seed entry %s: %w", e.ID, err)
		}
	}
	return nil
}
