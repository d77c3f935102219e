// Package main provides the resume_extractor command line tool.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-extractor/internal/config"
	"github.com/jonathan/resume-extractor/internal/events"
	"github.com/jonathan/resume-extractor/internal/extraction"
	"github.com/jonathan/resume-extractor/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:           "resume_extractor",
	Short:         "Résumé text extraction and section segmentation",
	Long:          "resume_extractor pulls plain text out of PDF and DOCX résumés and splits it into named sections such as experience, education and skills.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadRuntime resolves configuration and builds the logger every command shares
func loadRuntime(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// newCoordinator wires the configured extraction limits into a coordinator
func newCoordinator(cfg config.Config, logger *slog.Logger, bus *events.Bus, noDocx bool) *extraction.Coordinator {
	opts := []extraction.Option{
		extraction.WithLogger(logger),
		extraction.WithMaxFileSize(cfg.MaxFileSize),
	}
	if bus != nil {
		opts = append(opts, extraction.WithBus(bus))
	}
	if noDocx || !cfg.DocxOn() {
		opts = append(opts, extraction.WithoutDocx())
	}
	return extraction.NewCoordinator(opts...)
}
