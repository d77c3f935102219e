// Package observability provides structured logging setup and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/resume-extractor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of lines shown per section
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDocument outputs a summary of an extracted document followed by its sections.
func (p *Printer) PrintDocument(doc *types.Document) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", doc.Path))
	sb.WriteString(fmt.Sprintf("Format:   %s\n", doc.Format))
	sb.WriteString(fmt.Sprintf("ID:       %s\n", doc.ID))
	if doc.Metadata != nil {
		if doc.Metadata.PageCount > 0 {
			sb.WriteString(fmt.Sprintf("Pages:    %d\n", doc.Metadata.PageCount))
		}
		sb.WriteString(fmt.Sprintf("Chars:    %d\n", doc.Metadata.TextLength))
		sb.WriteString(fmt.Sprintf("SHA256:   %s\n", doc.Metadata.Hash))
	}
	sb.WriteString(fmt.Sprintf("Sections: %d", doc.Sections.Len()))

	p.printBox("EXTRACTED DOCUMENT", sb.String())
	p.PrintSections(doc.Sections)
}

// PrintSections outputs each section with its first lines.
func (p *Printer) PrintSections(sections *types.Sections) {
	if sections.Len() == 0 {
		return
	}

	var sb strings.Builder
	entries := sections.Entries()
	for i, s := range entries {
		sb.WriteString(fmt.Sprintf("%s (%d lines)\n", s.Name, len(s.Lines)))

		count := min(len(s.Lines), maxItemsToShow)
		for j := 0; j < count; j++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", truncate(s.Lines[j], 50)))
		}
		if len(s.Lines) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(s.Lines)-maxItemsToShow))
		}
		if i < len(entries)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SECTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCapabilities outputs which formats the coordinator can serve.
func (p *Printer) PrintCapabilities(caps map[types.Format]bool) {
	if len(caps) == 0 {
		return
	}

	formats := make([]string, 0, len(caps))
	for f := range caps {
		formats = append(formats, string(f))
	}
	sort.Strings(formats)

	var sb strings.Builder
	for _, f := range formats {
		mark := "✓"
		if !caps[types.Format(f)] {
			mark = "✗"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", mark, f))
	}

	p.printBox("CAPABILITIES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFailures outputs the files that could not be extracted.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFailures(failures map[string]error) {
	if len(failures) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALL FILES EXTRACTED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	paths := make([]string, 0, len(failures))
	for path := range failures {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Failed %d files:\n\n", len(failures)))
	for i, path := range paths {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", path))
		sb.WriteString(fmt.Sprintf("  %s\n", failures[path]))
		if i < len(paths)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("EXTRACTION FAILURES", strings.TrimSuffix(sb.String(), "\n"))
}
