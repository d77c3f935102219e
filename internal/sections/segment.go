package sections

import (
	"strings"

	"github.com/jonathan/resume-extractor/internal/types"
)

// Segment splits text into lines and assigns every non-empty trimmed line to a section.
//
// Lines before the first header go to SummarySection, which is always present.
// A header line switches the current section and is not stored. Sections opened
// by adjacent headers are kept with an empty line list. A header naming a section
// seen earlier reopens it, so its new lines are appended to the existing entry.
// Segment never fails; it is a pure function of its inputs.
func Segment(text string, table Table) *types.Sections {
	out := types.NewSections()
	out.Open(SummarySection)
	current := SummarySection

	for _, raw := range splitLines(text) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if name, ok := table.Match(line); ok {
			if name != current {
				current = name
				out.Open(current)
			}
			continue
		}

		out.Append(current, line)
	}

	return out
}

// SegmentStandard segments text with the standard table
func SegmentStandard(text string) *types.Sections {
	return Segment(text, standardTable)
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
