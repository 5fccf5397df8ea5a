// Package service wires the record pipeline: relay matching, leadoff
// extraction, the season ledger and meet reconciliation.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/recordbook/internal/adapters/repository"
	"github.com/okian/recordbook/internal/domain/alias"
	"github.com/okian/recordbook/internal/domain/leadoff"
	"github.com/okian/recordbook/internal/domain/ledger"
	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/internal/domain/reconcile"
	"github.com/okian/recordbook/internal/domain/relay"
	"github.com/okian/recordbook/pkg/logger"
	"github.com/okian/recordbook/pkg/metrics"
)

// ErrNoStore is returned by the store-backed operations when none was configured.
var ErrNoStore = errors.New("service has no store")

// Output is the result of one pipeline run.
type Output struct {
	repository.Artifacts

	Ledger    ledger.Stats
	Reconcile reconcile.Report
	Matched   int
	Unmatched int
	// Dropped counts derived entries whose season is not in the season list.
	Dropped  int
	Duration time.Duration
}

// Service runs the record pipeline.
type Service struct {
	store   repository.Store
	aliases alias.Resolver
	logger  logger.Logger
	now     func() time.Time

	relayOpts   []relay.Option
	leadoffOpts []leadoff.Option
	ledgerOpts  []ledger.Option
}

// Option configures the Service.
type Option func(*Service)

// WithStore sets the store used by Build and Reconcile.
func WithStore(s repository.Store) Option {
	return func(svc *Service) {
		svc.store = s
	}
}

// WithAliases sets the name resolver shared by matching and leadoff dedupe.
func WithAliases(r alias.Resolver) Option {
	return func(svc *Service) {
		if r != nil {
			svc.aliases = r
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log logger.Logger) Option {
	return func(svc *Service) {
		if log != nil {
			svc.logger = log
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

// WithMatcherOptions passes options to the relay matcher.
func WithMatcherOptions(opts ...relay.Option) Option {
	return func(svc *Service) {
		svc.relayOpts = append(svc.relayOpts, opts...)
	}
}

// WithLeadoffOptions passes options to the leadoff extractor.
func WithLeadoffOptions(opts ...leadoff.Option) Option {
	return func(svc *Service) {
		svc.leadoffOpts = append(svc.leadoffOpts, opts...)
	}
}

// WithSeasonComparator sets how the ledger checks season order.
func WithSeasonComparator(cmp ledger.SeasonComparator) Option {
	return func(svc *Service) {
		svc.ledgerOpts = append(svc.ledgerOpts, ledger.WithSeasonComparator(cmp))
	}
}

// New creates a new Service with the given options.
func New(opts ...Option) *Service {
	s := &Service{
		aliases: alias.Nop{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Run executes the pipeline over an in-memory dataset.
func (s *Service) Run(ctx context.Context, in repository.Dataset) (*Output, error) {
	started := s.now()
	if len(in.Seasons) == 0 {
		return nil, ledger.ErrNoSeasons
	}

	matcher := relay.NewMatcher(append(append([]relay.Option{}, s.relayOpts...),
		relay.WithAliases(s.aliases),
		relay.WithLogger(s.logger.Named("relay")),
	)...)
	extractor := leadoff.New(append(append([]leadoff.Option{}, s.leadoffOpts...),
		leadoff.WithClassifier(matcher.Classify),
		leadoff.WithAliases(s.aliases),
		leadoff.WithLogger(s.logger.Named("leadoff")),
	)...)

	listed := make(map[model.Season]bool, len(in.Seasons))
	for _, season := range in.Seasons {
		listed[season] = true
	}

	matched := matcher.Attach(ctx, in.Relays, in.Splits)
	leadoffs, droppedLeadoffs := s.listedOnly(ctx, listed, extractor.ExtractAll(ctx, matched, in.Splits))
	leadoffs = leadoff.Dedupe(leadoffs, s.aliases)
	relays, droppedRelays := s.listedOnly(ctx, listed, relayEntries(in.Relays))

	out := &Output{}
	for _, mr := range matched {
		if mr.Match != nil {
			out.Matched++
		} else {
			out.Unmatched++
		}
	}

	out.Dropped = droppedLeadoffs + droppedRelays
	if out.Dropped > 0 {
		s.logger.Warn(ctx, "entries from unlisted seasons dropped", logger.Int("count", out.Dropped))
	}
	batches := s.batches(in, leadoffs, relays)

	res, err := ledger.Build(ctx, batches, append(append([]ledger.Option{}, s.ledgerOpts...),
		ledger.WithLogger(s.logger.Named("ledger")),
	)...)
	if err != nil {
		return nil, fmt.Errorf("build ledger: %w", err)
	}

	out.Reconcile = reconcile.New(reconcile.WithLogger(s.logger.Named("reconcile"))).Fill(ctx, res.Events)
	out.Ledger = res.Stats

	finished := s.now()
	out.Artifacts = repository.Artifacts{
		RunID:       uuid.NewString(),
		GeneratedAt: finished,
		Current:     res.Current,
		History:     res.Events,
		Leadoffs:    leadoffs,
		Relays:      matched,
	}
	out.Duration = finished.Sub(started)
	metrics.RecordBuildDuration(out.Duration.Seconds(), finished.Unix())

	s.logger.Info(ctx, "records built",
		logger.String("run", out.RunID),
		logger.Int("seasons", res.Stats.Seasons),
		logger.Int("records", len(res.Current)),
		logger.Int("events", len(res.Events)),
		logger.Int("leadoffs", len(leadoffs)),
		logger.Int("relaysMatched", out.Matched),
		logger.Int("relaysUnmatched", out.Unmatched),
		logger.Int("meetsFilled", out.Reconcile.Filled),
		logger.Duration("took", out.Duration),
	)
	return out, nil
}

// Build loads the dataset from the store, runs the pipeline and saves the artifacts.
func (s *Service) Build(ctx context.Context) (*Output, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	ds, err := s.store.LoadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	out, err := s.Run(ctx, *ds)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveArtifacts(ctx, out.Artifacts); err != nil {
		return nil, fmt.Errorf("save artifacts: %w", err)
	}
	return out, nil
}

// Reconcile fills missing previous-holder meets in a saved history and
// writes it back when anything changed.
func (s *Service) Reconcile(ctx context.Context) (reconcile.Report, error) {
	if s.store == nil {
		return reconcile.Report{}, ErrNoStore
	}
	events, err := s.store.LoadHistory(ctx)
	if err != nil {
		return reconcile.Report{}, fmt.Errorf("load history: %w", err)
	}
	rep := reconcile.New(reconcile.WithLogger(s.logger.Named("reconcile"))).Fill(ctx, events)
	if rep.Filled == 0 {
		return rep, nil
	}
	if err := s.store.SaveHistory(ctx, events); err != nil {
		return rep, fmt.Errorf("save history: %w", err)
	}
	return rep, nil
}

// batches groups individual, leadoff and relay entries by season, in the
// dataset's season order. Derived entries must already be in listed seasons.
func (s *Service) batches(in repository.Dataset, derived ...[]model.TimeEntry) []ledger.SeasonBatch {
	index := make(map[model.Season]int, len(in.Seasons))
	batches := make([]ledger.SeasonBatch, len(in.Seasons))
	for i, season := range in.Seasons {
		index[season] = i
		batches[i].Season = season
		for _, e := range in.Entries[season] {
			e.Swimmer = s.aliases.Resolve(e.Swimmer)
			batches[i].Entries = append(batches[i].Entries, e)
		}
	}
	for _, group := range derived {
		for _, e := range group {
			i := index[e.Season]
			batches[i].Entries = append(batches[i].Entries, e)
		}
	}
	return batches
}

// listedOnly drops entries whose season is not in the season list.
func (s *Service) listedOnly(ctx context.Context, listed map[model.Season]bool, entries []model.TimeEntry) ([]model.TimeEntry, int) {
	kept := entries[:0]
	dropped := 0
	for _, e := range entries {
		if !listed[e.Season] {
			dropped++
			s.logger.Debug(ctx, "entry from unlisted season dropped",
				logger.String("season", string(e.Season)),
				logger.String("category", e.Category.String()),
				logger.String("swimmer", e.Swimmer),
			)
			continue
		}
		kept = append(kept, e)
	}
	return kept, dropped
}

// relayEntries turns official relay swims into ungraded relay-event entries
// so each relay event has an Open record.
func relayEntries(relays []model.RelayResult) []model.TimeEntry {
	out := make([]model.TimeEntry, 0, len(relays))
	for _, r := range relays {
		ev, ok := r.Type.Event()
		if !ok {
			continue
		}
		out = append(out, model.TimeEntry{
			Category: model.Category{Gender: r.Gender, Event: ev, Grade: model.GradeNone},
			Seconds:  r.Seconds,
			Swimmer:  rosterLine(r.Roster),
			Date:     r.Date,
			Season:   r.Season,
			Meet:     r.Meet,
			Origin:   model.OriginRelay,
		})
	}
	return out
}

func rosterLine(roster []model.RosterSlot) string {
	names := make([]string, 0, len(roster))
	for _, slot := range roster {
		if n, _ := relay.CleanName(slot.Name); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return "Relay"
	}
	return strings.Join(names, ", ")
}
