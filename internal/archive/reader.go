package archive

import (
	"io"

	"github.com/hpcfair/slurmplot/pkg/core"
)

// Reader replays archived records as a stream, so a plot run can enter the
// pipeline at the parser boundary without touching the accounting system.
type Reader struct {
	recs []*core.JobRecord
	next int
}

func NewReader(recs []*core.JobRecord) *Reader {
	return &Reader{recs: recs}
}

func (r *Reader) Next() (*core.JobRecord, error) {
	if r.next >= len(r.recs) {
		return nil, io.EOF
	}
	rec := r.recs[r.next]
	r.next++
	return rec, nil
}
