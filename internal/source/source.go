// Package source obtains raw job-accounting text, either by running the
// accounting query command or by reading a saved dump. Both yield the same
// pipe-separated shape; downstream stages never know which one ran.
package source

import (
	"context"
	"io"
)

// Source delivers the raw accounting text for one pipeline run. Fetch is the
// only blocking I/O in the pipeline and honors ctx cancellation.
type Source interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
}
