// Package save reads and writes session snapshots as JSON files.
package save

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nathoo/wandercore/engine/state"
	"github.com/nathoo/wandercore/types"
)

// FormatVersion guards against loading snapshots from incompatible
// builds.
const FormatVersion = 1

// Data is one complete session snapshot.
type Data struct {
	Version int          `json:"version"`
	Title   string       `json:"title"`
	Level   string       `json:"level"`
	Player  types.Point  `json:"player"`
	State   *state.State `json:"state"`
	SavedAt time.Time    `json:"saved_at"`
}

// Snapshot builds a Data ready for writing.
func Snapshot(title, level string, player types.Point, s *state.State) *Data {
	return &Data{
		Version: FormatVersion,
		Title:   title,
		Level:   level,
		Player:  player,
		State:   s,
		SavedAt: time.Now(),
	}
}

// Write serializes the snapshot to path, creating or truncating it.
func Write(path string, d *Data) error {
	if d.State != nil {
		Normalize(d.State)
	}
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	return nil
}

// Read loads and validates a snapshot from path.
func Read(path string) (*Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read save: %w", err)
	}
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode save: %w", err)
	}
	if d.Version != FormatVersion {
		return nil, fmt.Errorf("save version %d not supported", d.Version)
	}
	if d.Level == "" {
		return nil, fmt.Errorf("save has no level")
	}
	if d.State == nil {
		d.State = state.New()
	}
	Normalize(d.State)
	return &d, nil
}

// Normalize replaces nil maps with empty ones so accessors can mutate a
// loaded state without nil checks. JSON round-trips drop empty maps to
// nil, which this undoes.
func Normalize(s *state.State) {
	if s.Inventory == nil {
		s.Inventory = map[string]int{}
	}
	if s.Flags == nil {
		s.Flags = map[string]any{}
	}
	if s.Inter.Counts == nil {
		s.Inter.Counts = map[string]int{}
	}
	if s.Inter.Disabled == nil {
		s.Inter.Disabled = map[string]bool{}
	}
	if s.Inter.Enabled == nil {
		s.Inter.Enabled = map[string]bool{}
	}
	if s.Inter.Choices == nil {
		s.Inter.Choices = map[string]int{}
	}
	if s.HiddenLayers == nil {
		s.HiddenLayers = map[string]map[string]bool{}
	}
}
