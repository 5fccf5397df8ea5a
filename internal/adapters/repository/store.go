// Package repository loads season inputs and persists record artifacts.
package repository

import (
	"context"
	"time"

	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/internal/domain/relay"
)

// Dataset is every input of one build, fully in memory.
type Dataset struct {
	// Seasons is the external chronological order, oldest first.
	Seasons []model.Season
	Entries map[model.Season][]model.TimeEntry
	Relays  []model.RelayResult
	Splits  []model.SplitRecord
}

// Artifacts is everything a build hands to presentation.
type Artifacts struct {
	RunID       string
	GeneratedAt time.Time
	Current     []model.LedgerEntry
	History     []model.RecordEvent
	Leadoffs    []model.TimeEntry
	Relays      []relay.MatchedRelay
}

// Store provides read access to inputs and write access to artifacts.
type Store interface {
	// LoadDataset reads seasons, entries, relay results and split records.
	LoadDataset(ctx context.Context) (*Dataset, error)
	// LoadSplits reads only the split pool.
	LoadSplits(ctx context.Context) ([]model.SplitRecord, error)
	// SaveArtifacts replaces every artifact file.
	SaveArtifacts(ctx context.Context, a Artifacts) error

	// LoadHistory reads a previously written history.
	LoadHistory(ctx context.Context) ([]model.RecordEvent, error)
	// SaveHistory replaces the history file only.
	SaveHistory(ctx context.Context, events []model.RecordEvent) error
}
