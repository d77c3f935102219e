package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-extractor/internal/ingestion"
	"github.com/jonathan/resume-extractor/internal/observability"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>...",
	Short: "Extract and segment résumé files",
	Long: `Extract plain text from PDF and DOCX résumés and split it into sections.

Without --out each document is printed to stdout as JSON. With --out the text
and the document JSON are written to <out>/<file>.txt and <out>/<file>.json.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

var (
	extractOutDir      string
	extractTextOnly    bool
	extractConcurrency int
	extractNoDocx      bool
	extractVerbose     bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractOutDir, "out", "o", "", "Output directory")
	extractCmd.Flags().BoolVar(&extractTextOnly, "text-only", false, "Emit only the extracted text")
	extractCmd.Flags().IntVar(&extractConcurrency, "concurrency", 0, "Files extracted in parallel (default from config)")
	extractCmd.Flags().BoolVar(&extractNoDocx, "no-docx", false, "Disable DOCX extraction")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print a summary of each document to stderr")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	coord := newCoordinator(cfg, logger, nil, extractNoDocx)
	svc := ingestion.NewService(coord, ingestion.WithLogger(logger))

	limit := extractConcurrency
	if limit <= 0 {
		limit = cfg.Concurrency
	}

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	if extractVerbose {
		printer.PrintCapabilities(coord.Capabilities())
	}

	out := cmd.OutOrStdout()
	failures := make(map[string]error)
	for _, res := range svc.IngestBatch(cmd.Context(), args, limit) {
		if res.Err != nil {
			failures[res.Path] = res.Err
			logger.Error("extraction failed", "path", res.Path, "error", res.Err)
			continue
		}
		if extractVerbose {
			printer.PrintDocument(res.Document)
		}

		if extractOutDir != "" {
			written, err := ingestion.WriteOutput(extractOutDir, res.Document, extractTextOnly)
			if err != nil {
				return err
			}
			for _, p := range written {
				fmt.Fprintf(out, "Wrote %s\n", p)
			}
			continue
		}

		if extractTextOnly {
			fmt.Fprintln(out, res.Document.RawText)
			continue
		}
		docJSON, err := json.MarshalIndent(res.Document, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		fmt.Fprintln(out, string(docJSON))
	}

	if extractVerbose {
		printer.PrintFailures(failures)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d files failed to extract", len(failures), len(args))
	}
	return nil
}
