package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/resume-extractor/internal/types"
)

var (
	excessiveBlankLines = regexp.MustCompile(`\n\n\n+`)
	innerWhitespace     = regexp.MustCompile(`[ \t\f\v]+`)
)

// spaceReplacer maps non-breaking and zero-width characters that PDF and DOCX
// producers emit to their plain equivalents.
var spaceReplacer = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u2007", " ", // figure space
	"\u202f", " ", // narrow no-break space
	"\u200b", "", // zero-width space
	"\ufeff", "", // byte order mark
	"\x00", "",
)

// NormalizeText cleans extracted text while preserving its line structure
func NormalizeText(content string) string {
	if content == "" {
		return ""
	}

	// 1. Normalize line endings (CRLF → LF)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	// 2. Canonical composition so "é" compares equal however it was encoded
	content = norm.NFC.String(spaceReplacer.Replace(content))

	// 3. Process each line
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}
	result := strings.Join(lines, "\n")

	// 4. Remove excessive blank lines (max 2 consecutive)
	result = excessiveBlankLines.ReplaceAllString(result, "\n\n")

	return strings.TrimSpace(result)
}

// cleanLine trims a line and collapses runs of spaces and tabs
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	return innerWhitespace.ReplaceAllString(line, " ")
}

// WriteOutput writes the raw text of doc, and unless textOnly its JSON form,
// into outDir. Files are named after the input's base name.
func WriteOutput(outDir string, doc *types.Document, textOnly bool) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Base(doc.Path)
	written := make([]string, 0, 2)

	textPath := filepath.Join(outDir, base+".txt")
	if err := os.WriteFile(textPath, []byte(doc.RawText), 0644); err != nil {
		return nil, fmt.Errorf("failed to write text file: %w", err)
	}
	written = append(written, textPath)

	if textOnly {
		return written, nil
	}

	docJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	jsonPath := filepath.Join(outDir, base+".json")
	if err := os.WriteFile(jsonPath, docJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write document file: %w", err)
	}
	return append(written, jsonPath), nil
}
