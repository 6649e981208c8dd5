package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/hpcfair/slurmplot/internal/config"
	"github.com/hpcfair/slurmplot/pkg/core"
	"github.com/sirupsen/logrus"
)

const sacctTimeLayout = "2006-01-02T15:04:05"

// logFileRemedy is attached to SourceUnavailableError so the CLI can tell the
// user how to proceed without a working sacct.
const logFileRemedy = "pass --log-file to read a saved accounting dump instead"

// NewSacct returns a Source that runs the configured accounting command with
// the window and filters pushed down as query arguments. The header row stays
// on so the parser can map columns by name.
func NewSacct(cfg *config.Config, window core.Window, filter core.Filter, log *logrus.Entry) Source {
	return &sacctSource{cfg: cfg, window: window, filter: filter, log: log}
}

type sacctSource struct {
	cfg    *config.Config
	window core.Window
	filter core.Filter
	log    *logrus.Entry
}

func (s *sacctSource) args() []string {
	args := []string{
		"--parsable2",
		"--allusers",
		"--starttime", s.window.Start.UTC().Format(sacctTimeLayout),
		"--endtime", s.window.End.UTC().Format(sacctTimeLayout),
		"--format", strings.Join(s.cfg.Fields, ","),
	}
	if s.filter.Account != "" {
		args = append(args, "--accounts", s.filter.Account)
	}
	if s.filter.Partition != "" {
		args = append(args, "--partition", s.filter.Partition)
	}
	if s.filter.State != "" {
		args = append(args, "--state", s.filter.State)
	}
	if s.filter.User != "" {
		args = append(args, "--user", s.filter.User)
	}
	return args
}

func (s *sacctSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if _, err := exec.LookPath(s.cfg.SacctCommand); err != nil {
		return nil, &core.SourceUnavailableError{
			Source: s.cfg.SacctCommand,
			Remedy: logFileRemedy,
			Err:    err,
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	args := s.args()
	s.log.WithField("args", strings.Join(args, " ")).Debug("running accounting query")

	cmd := exec.CommandContext(queryCtx, s.cfg.SacctCommand, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	elapsed := time.Since(started)

	if queryCtx.Err() == context.DeadlineExceeded {
		return nil, &core.SourceTimeoutError{Timeout: s.cfg.Timeout, Elapsed: elapsed}
	}
	if err != nil {
		return nil, &core.SourceUnavailableError{
			Source: s.cfg.SacctCommand,
			Remedy: logFileRemedy,
			Err:    fmt.Errorf("%v: %s", err, strings.TrimSpace(stderr.String())),
		}
	}

	s.log.WithFields(logrus.Fields{
		"bytes":   stdout.Len(),
		"elapsed": elapsed,
	}).Debug("accounting query finished")

	return io.NopCloser(bytes.NewReader(stdout.Bytes())), nil
}
