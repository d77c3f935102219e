package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-extractor/internal/db"
	"github.com/jonathan/resume-extractor/internal/events"
	"github.com/jonathan/resume-extractor/internal/ingestion"
	"github.com/jonathan/resume-extractor/internal/server"
)

var (
	servePort int
	serveRoot string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction HTTP API",
	Long: `Start an HTTP server exposing /extract, /segment and a server-sent /events stream.

When database_url (or DATABASE_URL) is set, segmented documents are stored in
PostgreSQL and served from /documents.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveRoot, "root", "", "Directory /extract is confined to (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if serveRoot != "" {
		if fi, err := os.Stat(serveRoot); err != nil || !fi.IsDir() {
			return fmt.Errorf("--root %s is not a directory", serveRoot)
		}
		cfg.Server.Root = serveRoot
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus(events.WithBuffer(cfg.EventBuffer), events.WithLogger(logger))
	svc := ingestion.NewService(newCoordinator(cfg, logger, bus, false), ingestion.WithLogger(logger))

	opts := []server.Option{server.WithLogger(logger)}
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		opts = append(opts, server.WithStore(database))
		logger.Info("document storage enabled")
	}

	srv := server.New(server.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		RateLimit:      cfg.Server.RateLimit,
		Burst:          cfg.Server.Burst,
		Root:           cfg.Server.Root,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, svc, bus, opts...)
	if cfg.Server.Root == "" {
		logger.Warn("no server root configured; /extract can read any file this process can", "addr", srv.Addr())
	}

	return srv.Start(ctx)
}
