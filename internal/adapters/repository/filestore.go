package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/pkg/logger"
	"github.com/okian/recordbook/pkg/metrics"
)

// Artifact file names under the output directory.
const (
	CurrentFile  = "records_current.yaml"
	HistoryFile  = "records_history.yaml"
	LeadoffFile  = "leadoffs.yaml"
	RelaySplits  = "relay_splits.yaml"
	SeasonsFile  = "seasons.yaml"
	entriesDir   = "entries"
	relaysDir    = "relays"
	splitsDir    = "splits"
	defaultPerms = 0o644
)

// Input file extensions, in lookup order.
var extensions = []string{".yaml", ".yml", ".json"}

var errUnknownEvent = errors.New("unknown event")

// FileStore reads inputs from a data directory and writes artifacts to an
// output directory. Every artifact is written to a temp file and renamed.
type FileStore struct {
	dataDir   string
	outputDir string
	mode      os.FileMode
	log       logger.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore.
func NewFileStore(dataDir, outputDir string, opts ...Option) *FileStore {
	s := &FileStore{
		dataDir:   dataDir,
		outputDir: outputDir,
		mode:      defaultPerms,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadDataset implements Store.
func (s *FileStore) LoadDataset(ctx context.Context) (*Dataset, error) {
	var seasons []string
	path := filepath.Join(s.dataDir, SeasonsFile)
	if err := decodeFile(path, &seasons); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, err
	}

	ds := &Dataset{Entries: make(map[model.Season][]model.TimeEntry, len(seasons))}
	for _, raw := range seasons {
		season := model.Season(strings.TrimSpace(raw))
		ds.Seasons = append(ds.Seasons, season)

		entries, err := s.loadEntries(ctx, season)
		if err != nil {
			return nil, err
		}
		ds.Entries[season] = entries

		relays, err := s.loadRelays(ctx, season)
		if err != nil {
			return nil, err
		}
		ds.Relays = append(ds.Relays, relays...)
	}

	splits, err := s.LoadSplits(ctx)
	if err != nil {
		return nil, err
	}
	ds.Splits = splits
	return ds, nil
}

func (s *FileStore) loadEntries(ctx context.Context, season model.Season) ([]model.TimeEntry, error) {
	var raws []rawEntry
	path, err := decodeSeasonFile(filepath.Join(s.dataDir, entriesDir), season, &raws)
	if err != nil || path == "" {
		return nil, err
	}
	out := make([]model.TimeEntry, 0, len(raws))
	for i, r := range raws {
		e, err := r.toModel(season)
		if errors.Is(err, errUnknownEvent) {
			metrics.RecordEntrySkipped("unknown_event")
			s.log.Debug(ctx, "entry with unknown event skipped",
				logger.String("file", path),
				logger.Int("index", i),
				logger.String("event", r.Event),
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s entry %d: %w", path, i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *FileStore) loadRelays(ctx context.Context, season model.Season) ([]model.RelayResult, error) {
	var raws []rawRelay
	path, err := decodeSeasonFile(filepath.Join(s.dataDir, relaysDir), season, &raws)
	if err != nil || path == "" {
		return nil, err
	}
	out := make([]model.RelayResult, 0, len(raws))
	for i, r := range raws {
		rr, err := r.toModel(season)
		if errors.Is(err, errUnknownEvent) {
			s.log.Debug(ctx, "relay with unknown event skipped",
				logger.String("file", path),
				logger.Int("index", i),
				logger.String("event", r.Event),
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s relay %d: %w", path, i, err)
		}
		out = append(out, rr)
	}
	return out, nil
}

// LoadSplits implements Store. Files are read in name order so the pool
// order, and with it first-encountered tie-breaks, is stable.
func (s *FileStore) LoadSplits(_ context.Context) ([]model.SplitRecord, error) {
	dir := filepath.Join(s.dataDir, splitsDir)
	names, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, dir, err)
	}
	var files []string
	for _, d := range names {
		if !d.IsDir() && hasInputExt(d.Name()) {
			files = append(files, d.Name())
		}
	}
	sort.Strings(files)

	var out []model.SplitRecord
	for _, name := range files {
		var f rawSplitFile
		if err := decodeFile(filepath.Join(dir, name), &f); err != nil {
			return nil, err
		}
		season := model.Season(f.Season)
		if season == "" {
			season = model.Season(f.Year)
		}
		for _, r := range f.Boys {
			out = append(out, r.toModel(season, model.GenderMale))
		}
		for _, r := range f.Girls {
			out = append(out, r.toModel(season, model.GenderFemale))
		}
	}
	return out, nil
}

// SaveArtifacts implements Store.
func (s *FileStore) SaveArtifacts(ctx context.Context, a Artifacts) error {
	stamp := a.GeneratedAt.UTC().Format(time.RFC3339)

	current := currentFile{RunID: a.RunID, GeneratedAt: stamp}
	for _, row := range a.Current {
		current.Records = append(current.Records, rowOf(row))
	}
	history := historyFile{RunID: a.RunID, GeneratedAt: stamp}
	for _, ev := range a.History {
		history.Events = append(history.Events, eventOf(ev))
	}
	leadoffs := leadoffFile{RunID: a.RunID}
	for _, e := range a.Leadoffs {
		leadoffs.Leadoffs = append(leadoffs.Leadoffs, leadoffOf(e))
	}
	relays := relayFile{RunID: a.RunID}
	for _, mr := range a.Relays {
		relays.Relays = append(relays.Relays, relayOf(mr))
	}

	docs := []struct {
		name string
		v    any
	}{
		{CurrentFile, current},
		{HistoryFile, history},
		{LeadoffFile, leadoffs},
		{RelaySplits, relays},
	}
	for _, d := range docs {
		if err := s.write(d.name, d.v); err != nil {
			return err
		}
	}
	s.log.Info(ctx, "artifacts written",
		logger.String("dir", s.outputDir),
		logger.Int("records", len(a.Current)),
		logger.Int("events", len(a.History)),
	)
	return nil
}

// LoadHistory implements Store.
func (s *FileStore) LoadHistory(_ context.Context) ([]model.RecordEvent, error) {
	var f historyFile
	path := filepath.Join(s.outputDir, HistoryFile)
	if err := decodeFile(path, &f); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, err
	}
	out := make([]model.RecordEvent, 0, len(f.Events))
	for i, d := range f.Events {
		ev, err := d.toModel()
		if err != nil {
			return nil, fmt.Errorf("%s event %d: %w", path, i, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// SaveHistory implements Store.
func (s *FileStore) SaveHistory(_ context.Context, events []model.RecordEvent) error {
	f := historyFile{}
	for _, ev := range events {
		f.Events = append(f.Events, eventOf(ev))
	}
	return s.write(HistoryFile, f)
}

// WriteYAML writes v to path through a temp file and rename.
func WriteYAML(path string, v any, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	enc := yaml.NewEncoder(tmp)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := enc.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return nil
}

func (s *FileStore) write(name string, v any) error {
	return WriteYAML(filepath.Join(s.outputDir, name), v, s.mode)
}

func decodeFile(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return nil
}

// decodeSeasonFile decodes dir/<season>.<ext> into v. A missing file is not
// an error and yields an empty path.
func decodeSeasonFile(dir string, season model.Season, v any) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(dir, string(season)+ext)
		err := decodeFile(path, v)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		return path, nil
	}
	return "", nil
}

func hasInputExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}
