package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-extractor/internal/ingestion"
	"github.com/jonathan/resume-extractor/internal/sections"
)

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Split already extracted résumé text into sections",
	Long:  "Read plain text from --text-file, or stdin when it is omitted, and print its sections as a JSON object.",
	Args:  cobra.NoArgs,
	RunE:  runSegment,
}

var (
	segmentTextFile string
	segmentRaw      bool
)

func init() {
	segmentCmd.Flags().StringVarP(&segmentTextFile, "text-file", "t", "", "Path to a text file (default stdin)")
	segmentCmd.Flags().BoolVar(&segmentRaw, "raw", false, "Skip text normalization")

	rootCmd.AddCommand(segmentCmd)
}

func runSegment(cmd *cobra.Command, _ []string) error {
	var content []byte
	var err error
	if segmentTextFile != "" {
		content, err = os.ReadFile(segmentTextFile)
	} else {
		content, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read text: %w", err)
	}

	text := string(content)
	if !segmentRaw {
		text = ingestion.NormalizeText(text)
	}

	out, err := json.MarshalIndent(sections.SegmentStandard(text), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sections: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
