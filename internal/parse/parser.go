// Package parse turns raw accounting text into typed job records, one per
// scheduler job. It streams: records are produced as lines are consumed, so
// very large exports never materialize fully.
package parse

import (
	"bufio"
	"io"
	"strings"

	"github.com/hpcfair/slurmplot/pkg/core"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RecordReader yields one job record per call. io.EOF signals the end of the
// stream; any other error is a real read failure.
type RecordReader interface {
	Next() (*core.JobRecord, error)
}

// Reader parses pipe-separated accounting text. The first line must be the
// header row; the field mapping translates its names into canonical fields.
// Step rows (job IDs like "123.batch") fold into their parent job instead of
// becoming records of their own.
type Reader struct {
	scanner *bufio.Scanner
	mapping map[string]FieldID
	log     *logrus.Entry

	columns []FieldID
	pending *core.JobRecord
	done    bool
	diag    core.Diagnostics
}

func NewReader(r io.Reader, mapping map[string]FieldID, log *logrus.Entry) *Reader {
	if mapping == nil {
		mapping = DefaultFieldMapping
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{scanner: sc, mapping: mapping, log: log}
}

// Diagnostics returns the parse counters accumulated so far. Valid once the
// stream is drained.
func (p *Reader) Diagnostics() core.Diagnostics {
	return p.diag
}

func (p *Reader) Next() (*core.JobRecord, error) {
	if p.done {
		return nil, io.EOF
	}
	if p.columns == nil {
		if err := p.readHeader(); err != nil {
			return nil, err
		}
	}

	for p.scanner.Scan() {
		line := strings.TrimRight(p.scanner.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) != len(p.columns) {
			p.warn("column count mismatch", line)
			continue
		}

		jobID := p.fieldValue(fields, FieldJobID)
		if jobID == "" {
			p.warn("record without job ID", line)
			continue
		}

		if base, isStep := splitStepID(jobID); isStep {
			p.mergeStep(base, fields)
			continue
		}

		rec := p.parseRecord(jobID, fields)
		prev := p.pending
		p.pending = rec
		if prev != nil {
			p.diag.RecordsRead++
			return prev, nil
		}
	}

	if err := p.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading accounting records")
	}

	p.done = true
	if p.pending != nil {
		rec := p.pending
		p.pending = nil
		p.diag.RecordsRead++
		return rec, nil
	}
	return nil, io.EOF
}

func (p *Reader) readHeader() error {
	for p.scanner.Scan() {
		line := strings.TrimRight(p.scanner.Text(), "\r")
		if line == "" {
			continue
		}
		names := strings.Split(line, "|")
		p.columns = make([]FieldID, len(names))
		for i, name := range names {
			p.columns[i] = p.mapping[name] // unmapped names stay FieldUnknown
		}
		return nil
	}
	if err := p.scanner.Err(); err != nil {
		return errors.Wrap(err, "reading accounting header")
	}
	p.done = true
	return io.EOF
}

func (p *Reader) fieldValue(fields []string, id FieldID) string {
	for i, col := range p.columns {
		if col == id {
			return fields[i]
		}
	}
	return ""
}

// mergeStep folds a step row into the pending parent job. Slurm reports
// MaxRSS on step rows only, so the parent's value is the max over its steps.
func (p *Reader) mergeStep(baseID string, fields []string) {
	if p.pending == nil || p.pending.JobID != baseID {
		p.warn("step row without parent job", baseID)
		return
	}
	p.diag.StepsMerged++

	raw := p.fieldValue(fields, FieldMaxRSS)
	mem, ok := parseSacctMemory(raw)
	if !ok {
		p.warn("malformed step MaxRSS", raw)
		return
	}
	if !mem.Valid {
		return
	}
	cur := p.pending.MaxRSS
	if !cur.Valid || mem.Value*factorToKB(mem.Unit) > cur.Value*factorToKB(cur.Unit) {
		p.pending.MaxRSS = mem
	}
}

// factorToKB is only used for comparing raw memory values of different units
// while merging steps; canonical conversion stays in the normalizer.
func factorToKB(u core.MemoryUnit) float64 {
	switch u {
	case core.MB:
		return 1 << 10
	case core.GB:
		return 1 << 20
	case core.TB:
		return 1 << 30
	default:
		return 1
	}
}

func (p *Reader) parseRecord(jobID string, fields []string) *core.JobRecord {
	rec := &core.JobRecord{JobID: jobID}
	for i, col := range p.columns {
		val := fields[i]
		var ok bool
		switch col {
		case FieldAccount:
			rec.Account = val
		case FieldPartition:
			rec.Partition = val
		case FieldUser:
			rec.User = val
		case FieldState:
			rec.State = parseSacctState(val)
		case FieldSubmit:
			rec.Submit, ok = parseSacctTime(val)
			p.warnIfMalformed(ok, "Submit", val)
		case FieldStart:
			rec.Start, ok = parseSacctTime(val)
			p.warnIfMalformed(ok, "Start", val)
		case FieldEnd:
			rec.End, ok = parseSacctTime(val)
			p.warnIfMalformed(ok, "End", val)
		case FieldReqCPUs:
			rec.ReqCPUs, ok = parseSacctFloat(val)
			p.warnIfMalformed(ok, "ReqCPUS", val)
		case FieldAllocCPUs:
			rec.AllocCPUs, ok = parseSacctFloat(val)
			p.warnIfMalformed(ok, "AllocCPUS", val)
		case FieldReqMem:
			rec.ReqMem, ok = parseSacctMemory(val)
			p.warnIfMalformed(ok, "ReqMem", val)
		case FieldMaxRSS:
			rec.MaxRSS, ok = parseSacctMemory(val)
			p.warnIfMalformed(ok, "MaxRSS", val)
		case FieldAllocTRES:
			rec.AllocGPUs, ok = parseTRESGPUs(val)
			p.warnIfMalformed(ok, "AllocTRES", val)
		case FieldCPUTimeRaw:
			rec.CPUTimeRaw, ok = parseSacctFloat(val)
			p.warnIfMalformed(ok, "CPUTimeRAW", val)
		}
	}
	return rec
}

// warnIfMalformed counts a malformed field. The field stays absent; the
// record itself survives.
func (p *Reader) warnIfMalformed(ok bool, field, val string) {
	if !ok {
		p.diag.ParseWarnings++
		if p.log != nil {
			p.log.WithFields(logrus.Fields{"field": field, "value": val}).
				Debug("malformed field treated as absent")
		}
	}
}

func (p *Reader) warn(msg, detail string) {
	p.diag.ParseWarnings++
	if p.log != nil {
		p.log.WithField("detail", detail).Debug(msg)
	}
}

// splitStepID splits "123.batch" into its job ID and reports whether the row
// is a step row.
func splitStepID(jobID string) (string, bool) {
	if i := strings.IndexByte(jobID, '.'); i >= 0 {
		return jobID[:i], true
	}
	return jobID, false
}
