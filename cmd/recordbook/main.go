package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/okian/recordbook/internal/adapters/harvest"
	"github.com/okian/recordbook/internal/adapters/repository"
	service "github.com/okian/recordbook/internal/app"
	"github.com/okian/recordbook/internal/config"
	"github.com/okian/recordbook/internal/domain/alias"
	"github.com/okian/recordbook/internal/domain/leadoff"
	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/internal/domain/relay"
	"github.com/okian/recordbook/pkg/logger"
	"github.com/okian/recordbook/pkg/metrics"
)

const (
	configFlag    = "config"
	seasonFlag    = "season"
	boysFlag      = "boys"
	girlsFlag     = "girls"
	outputFlag    = "output"
	stdoutCLIName = "-"
)

var build string
var semanticVersion = "v0.1.0-dev" + build

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		// Use stderr directly since the logger may not be initialized yet
		os.Stderr.WriteString("recordbook: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:    "recordbook",
		Usage:   "Build and maintain a swim team's record book",
		Version: semanticVersion,
		Writer:  stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "YAML config file (defaults to $RECORDBOOK_CONFIG)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Replay every season and write the record artifacts",
				Action: func(cCtx *cli.Context) error { return runBuild(cCtx, stdout) },
			},
			{
				Name:   "reconcile",
				Usage:  "Fill missing previous-holder meets in the saved history",
				Action: func(cCtx *cli.Context) error { return runReconcile(cCtx, stdout) },
			},
			{
				Name:  "harvest",
				Usage: "Extract relay splits from saved team stats pages",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     seasonFlag,
						Aliases:  []string{"s"},
						Usage:    "Season the pages belong to, e.g. 2023-24",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  boysFlag,
						Usage: "Path to a saved boys stats page (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  girlsFlag,
						Usage: "Path to a saved girls stats page (repeatable)",
					},
					&cli.StringFlag{
						Name:    outputFlag,
						Aliases: []string{"o"},
						Usage:   "Where to write the split file. Can be a file path or \"-\" (for stdout).",
						Value:   stdoutCLIName,
					},
				},
				Action: func(cCtx *cli.Context) error { return runHarvest(cCtx, stdout) },
			},
		},
	}
}

// setup loads configuration and initializes the global logger.
func setup(cCtx *cli.Context) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(cCtx.Context, cCtx.String(configFlag))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithJSON(cfg.LogJSON)); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(cCtx.Context, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, log, nil
}

// newService maps configuration onto pipeline options.
func newService(cfg *config.Config, log logger.Logger) (*service.Service, error) {
	opts := []service.Option{
		service.WithLogger(log),
		service.WithStore(repository.NewFileStore(cfg.DataDir, cfg.OutputDir,
			repository.WithLogger(log.Named("store")),
		)),
		service.WithMatcherOptions(
			relay.WithMinOverlap(cfg.MinNameOverlap),
			relay.WithTolerance(model.Relay200Free, cfg.Tolerance200S),
			relay.WithTolerance(model.Relay200Medley, cfg.Tolerance200S),
			relay.WithTolerance(model.Relay400Free, cfg.Tolerance400S),
			relay.WithFreeSplitMax(cfg.FreeSplitMaxS),
		),
		service.WithLeadoffOptions(
			leadoff.WithBounds(model.Event50Free, cfg.Leadoff50MinS, cfg.Leadoff50MaxS),
			leadoff.WithBounds(model.Event100Free, cfg.Leadoff100MinS, cfg.Leadoff100MaxS),
		),
	}
	if cfg.AliasFile != "" {
		aliases, err := alias.Load(cfg.AliasFile)
		if err != nil {
			return nil, err
		}
		log.Info(context.Background(), "aliases loaded", logger.Int("count", aliases.Len()))
		opts = append(opts, service.WithAliases(aliases))
	}
	return service.New(opts...), nil
}

func runBuild(cCtx *cli.Context, stdout io.Writer) error {
	cfg, log, err := setup(cCtx)
	if err != nil {
		return err
	}
	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}

	out, err := svc.Build(cCtx.Context)
	if err != nil {
		return err
	}
	if cfg.MetricsFile != "" {
		if err := metrics.Global().WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn(cCtx.Context, "metrics not written", logger.String("path", cfg.MetricsFile), logger.Error(err))
		}
	}

	_, err = fmt.Fprintf(stdout, "run %s: %d seasons, %d records, %d record events, %d leadoffs, %d/%d relays matched\n",
		out.RunID, out.Ledger.Seasons, len(out.Current), len(out.History), len(out.Leadoffs),
		out.Matched, out.Matched+out.Unmatched)
	return err
}

func runReconcile(cCtx *cli.Context, stdout io.Writer) error {
	cfg, log, err := setup(cCtx)
	if err != nil {
		return err
	}
	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}

	rep, err := svc.Reconcile(cCtx.Context)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%d pending, %d filled, %d missed\n", rep.Pending, rep.Filled, rep.Missed)
	return err
}

func runHarvest(cCtx *cli.Context, stdout io.Writer) error {
	_, log, err := setup(cCtx)
	if err != nil {
		return err
	}
	season := model.Season(cCtx.String(seasonFlag))
	boys, girls := cCtx.StringSlice(boysFlag), cCtx.StringSlice(girlsFlag)
	if len(boys)+len(girls) == 0 {
		return fmt.Errorf("at least one --%s or --%s page is required", boysFlag, girlsFlag)
	}

	var recs []model.SplitRecord
	for _, src := range []struct {
		gender model.Gender
		paths  []string
	}{{model.GenderMale, boys}, {model.GenderFemale, girls}} {
		for _, path := range src.paths {
			page, err := harvestFile(path, season, src.gender)
			if err != nil {
				return err
			}
			log.Info(cCtx.Context, "page harvested",
				logger.String("path", path),
				logger.String("gender", src.gender.Label()),
				logger.Int("records", len(page.Records)),
				logger.Int("malformed", page.Malformed),
			)
			recs = append(recs, page.Records...)
		}
	}

	doc := repository.SplitFileOf(season, recs)
	if dest := cCtx.String(outputFlag); dest != stdoutCLIName {
		return repository.WriteYAML(dest, doc, 0o644)
	}
	yamlEncoder := yaml.NewEncoder(stdout)
	yamlEncoder.SetIndent(2)
	if err := yamlEncoder.Encode(doc); err != nil {
		return fmt.Errorf("encoding to YAML failed: %w", err)
	}
	return yamlEncoder.Close()
}

func harvestFile(path string, season model.Season, gender model.Gender) (*harvest.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", harvest.ErrReadPage, err)
	}
	defer func() { _ = f.Close() }()
	return harvest.Parse(f, season, gender)
}
