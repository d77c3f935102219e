package extraction

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/jonathan/resume-extractor/internal/types"
)

// DefaultMaxFileSize bounds how much of a file is read into memory
const DefaultMaxFileSize = 50 * 1024 * 1024

// PDFAdapter extracts text page by page. The whole file is read into memory first.
type PDFAdapter struct {
	MaxFileSize int64
}

// NewPDFAdapter creates a PDFAdapter; maxFileSize <= 0 selects DefaultMaxFileSize
func NewPDFAdapter(maxFileSize int64) *PDFAdapter {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &PDFAdapter{MaxFileSize: maxFileSize}
}

// Extract reads the PDF at path and reports round(100*i/N) after each page i of N
func (a *PDFAdapter) Extract(_ context.Context, path string, onProgress ProgressFunc) (res *Result, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = failed(types.FormatPDF, path, "malformed PDF", fmt.Errorf("%v", r))
		}
	}()

	data, err := readLimited(path, a.MaxFileSize)
	if err != nil {
		return nil, failed(types.FormatPDF, path, "read file", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, failed(types.FormatPDF, path, "open PDF", err)
	}

	pageCount := reader.NumPage()
	var sb strings.Builder
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if !page.V.IsNull() {
			text, err := page.GetPlainText(nil)
			if err != nil {
				return nil, failed(types.FormatPDF, path, fmt.Sprintf("decode page %d", i), err)
			}
			sb.WriteString(text)
		}
		if i < pageCount {
			sb.WriteByte('\n')
		}

		report(onProgress, ProgressRecord{
			Stage:     StagePage,
			Progress:  percent(i, pageCount),
			Page:      i,
			PageCount: pageCount,
		})
	}

	return &Result{Text: sb.String(), PageCount: pageCount}, nil
}

func readLimited(path string, limit int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), limit)
	}
	return os.ReadFile(path)
}
