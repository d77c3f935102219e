package extraction

import (
	"context"
	"math"
)

// Progress stages reported by adapters
const (
	StageReading    = "reading"
	StagePage       = "page"
	StageProcessing = "processing"
	StageComplete   = "complete"
)

// ProgressRecord is one progress report. Progress is a whole percentage in [0, 100];
// Page and PageCount are only set for page-wise formats.
type ProgressRecord struct {
	Stage     string `json:"stage"`
	Progress  int    `json:"progress"`
	Page      int    `json:"page,omitempty"`
	PageCount int    `json:"pageCount,omitempty"`
}

// ProgressFunc receives progress reports. It may be nil.
type ProgressFunc func(ProgressRecord)

// Result is the output of a successful extraction
type Result struct {
	Text      string
	PageCount int
}

// Adapter converts one binary format into plain text.
// Implementations must return only errors from this package's taxonomy.
type Adapter interface {
	Extract(ctx context.Context, path string, onProgress ProgressFunc) (*Result, error)
}

func report(fn ProgressFunc, rec ProgressRecord) {
	if fn != nil {
		fn(rec)
	}
}

// percent returns round(100*i/n) as a whole percentage
func percent(i, n int) int {
	if n <= 0 {
		return 100
	}
	return int(math.Round(100 * float64(i) / float64(n)))
}
