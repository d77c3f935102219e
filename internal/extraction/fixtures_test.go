package extraction

import (
	"testing"

	"github.com/jonathan/resume-extractor/internal/extraction/extractiontest"
)

func writePDF(t *testing.T, pages ...string) string {
	t.Helper()
	return extractiontest.WritePDF(t, "resume.pdf", pages...)
}

func writeDocx(t *testing.T, paragraphs ...string) string {
	t.Helper()
	return extractiontest.WriteDocx(t, "resume.docx", paragraphs...)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	return extractiontest.WriteFile(t, name, content)
}
