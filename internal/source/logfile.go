package source

import (
	"context"
	"io"
	"os"

	"github.com/hpcfair/slurmplot/pkg/core"
)

// NewFile returns a Source reading a saved accounting dump: the same
// pipe-separated text sacct would print, header row included. Date and filter
// narrowing happens downstream since a flat file cannot pre-filter.
func NewFile(path string) Source {
	return &fileSource{path: path}
}

type fileSource struct {
	path string
}

func (s *fileSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, &core.SourceUnavailableError{Source: s.path, Err: err}
	}
	return f, nil
}
