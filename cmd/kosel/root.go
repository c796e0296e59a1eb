package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/caio-sobreiro/dicomko/config"
	"github.com/caio-sobreiro/dicomko/events"
	"github.com/caio-sobreiro/dicomko/interfaces"
	"github.com/caio-sobreiro/dicomko/keyobject"
	"github.com/caio-sobreiro/dicomko/selection"
	"github.com/caio-sobreiro/dicomko/store/sqlite"
)

// globals are the persistent flags shared by every command
type globals struct {
	configPath string
	dbPath     string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:          "kosel",
		Short:        "Key object selections for DICOM series",
		Long:         "Record images into Key Object Selection documents and filter series to the images a document references.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	flags.StringVar(&g.dbPath, "db", "", "Database path, overrides database.path")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&g.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddGroup(
		&cobra.Group{ID: "series", Title: "Series Commands:"},
		&cobra.Group{ID: "documents", Title: "Document Commands:"},
	)

	for _, c := range []*cobra.Command{demoCmd(g), toggleCmd(g), filterCmd(g)} {
		c.GroupID = "series"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{listCmd(g), exportCmd(g), importCmd(g)} {
		c.GroupID = "documents"
		rootCmd.AddCommand(c)
	}
	return rootCmd
}

func (g *globals) load() error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.dbPath != "" {
		cfg.Database.Path = g.dbPath
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg
	g.logger = newLogger(cfg.Log)
	slog.SetDefault(g.logger)
	return nil
}

func newLogger(c config.LogConfig) *slog.Logger {
	if strings.EqualFold(c.Format, "json") {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.Level)); err != nil {
			level = slog.LevelInfo
		}
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	level, err := log.ParseLevel(c.Level)
	if err != nil {
		level = log.InfoLevel
	}
	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	return slog.New(handler)
}

// app wires the engine for one command invocation
type app struct {
	logger   *slog.Logger
	store    *sqlite.Store
	registry *keyobject.Registry
	bus      *events.Bus
	cfg      config.Config
}

func (g *globals) openApp(ctx context.Context) (*app, error) {
	if err := os.MkdirAll(filepath.Dir(g.cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	store, err := sqlite.Open(g.cfg.Database.Path, sqlite.WithLogger(g.logger))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	bus := events.NewBus(events.WithLogger(g.logger))
	bus.SubscribeAll(func(ctx context.Context, event interfaces.Event) error {
		g.logger.DebugContext(ctx, "Event", "kind", string(event.Kind), "series_uid", event.SeriesUID)
		return nil
	})

	a := &app{
		logger: g.logger,
		store:  store,
		registry: keyobject.NewRegistry(
			keyobject.WithStore(store),
			keyobject.WithLogger(g.logger),
		),
		bus: bus,
		cfg: g.cfg,
	}
	g.logger.DebugContext(ctx, "Opened database", "path", g.cfg.Database.Path)
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) coordinator(prompter interfaces.Prompter) *selection.Coordinator {
	builder := keyobject.NewBuilder(prompter, a.registry.Clock(),
		keyobject.WithDefaultDescription(a.cfg.KeyObject.DefaultDescription),
		keyobject.WithDialogTitle(a.cfg.KeyObject.DialogTitle),
		keyobject.WithBuilderLogger(a.logger),
	)
	opts := []selection.Option{
		selection.WithLogger(a.logger),
		selection.WithNotifier(a.bus),
		selection.WithDialogTitle(a.cfg.KeyObject.DialogTitle),
	}
	resolver := selection.NewResolver(a.registry, builder, prompter, opts...)
	return selection.NewCoordinator(resolver, a.registry, opts...)
}
