package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hpcfair/slurmplot/internal/archive"
	"github.com/hpcfair/slurmplot/internal/config"
	"github.com/hpcfair/slurmplot/internal/pipeline"
	"github.com/hpcfair/slurmplot/internal/render"
	"github.com/hpcfair/slurmplot/internal/source"
	"github.com/hpcfair/slurmplot/pkg/core"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Flags for plot
const (
	StartFlag       = "start"
	EndFlag         = "end"
	AccountFlag     = "account"
	PartitionFlag   = "partition"
	StateFlag       = "state"
	UserFlag        = "user"
	IntervalFlag    = "interval"
	MetricsFlag     = "metrics"
	OutputFlag      = "output"
	FormatFlag      = "format"
	InteractiveFlag = "interactive"
	LogFileFlag     = "log-file"
	FromArchiveFlag = "from-archive"
	DryRunFlag      = "dry-run"
)

const dateLayout = "2006-01-02"

var plotStart string
var plotEnd string
var plotAccount string
var plotPartition string
var plotState string
var plotUser string
var plotInterval string
var plotMetrics []string
var plotOutput string
var plotFormat string
var plotInteractive bool
var plotLogFile string
var plotFromArchive bool
var plotDryRun bool

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Aggregate job accounting data and render a chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		window, err := resolveWindow(plotStart, plotEnd)
		if err != nil {
			return err
		}
		interval, err := core.ParseInterval(plotInterval)
		if err != nil {
			return err
		}
		format := plotFormat
		if plotInteractive {
			format = render.FormatHTML
		}

		log := logrus.WithField("component", "plot")
		filter := core.Filter{
			Account:   plotAccount,
			Partition: plotPartition,
			State:     plotState,
			User:      plotUser,
		}
		opts := pipeline.RunOptions{
			Window:   window,
			Filter:   filter,
			Interval: interval,
			Metrics:  plotMetrics,
		}
		outPath := filepath.Join(cfg.Directory, fmt.Sprintf("%s.%s", plotOutput, format))

		if plotDryRun {
			fmt.Printf("Would aggregate %s to %s by %s into %s\n",
				window.Start.Format(dateLayout), window.End.Format(dateLayout), interval, outPath)
			return nil
		}

		ctx, cancel := interruptContext()
		defer cancel()

		p := pipeline.New(cfg, log)
		var s *core.AggregatedSeries
		var diag core.Diagnostics
		if plotFromArchive {
			s, diag, err = runFromArchive(ctx, p, cfg, opts)
		} else {
			var src source.Source
			if plotLogFile != "" {
				src = source.NewFile(plotLogFile)
			} else {
				src = source.NewSacct(cfg, window, filter, log)
			}
			s, diag, err = p.Run(ctx, src, opts)
		}

		reportDiagnostics(diag)
		if err != nil {
			if _, noData := err.(*core.NoDataError); noData {
				fmt.Fprintln(os.Stderr, "No data found for the specified criteria. Try widening the date range or relaxing the filters.")
			}
			return err
		}

		if err := writeChart(s, cfg, format, outPath, window); err != nil {
			return err
		}
		fmt.Println("Plot saved to:", outPath)

		if verbose {
			printSummary(pipeline.Summarize(s), cfg, interval)
		}
		return nil
	},
}

func runFromArchive(ctx context.Context, p *pipeline.Pipeline, cfg *config.Config, opts pipeline.RunOptions) (*core.AggregatedSeries, core.Diagnostics, error) {
	if cfg.ArchiveDSN == "" {
		return nil, core.Diagnostics{}, fmt.Errorf("archive.dsn is not configured")
	}
	dao, err := archive.NewDao(cfg.ArchiveDSN)
	if err != nil {
		return nil, core.Diagnostics{}, err
	}
	recs, err := dao.QueryJobRecords(opts.Window)
	if err != nil {
		return nil, core.Diagnostics{}, err
	}
	return p.RunRecords(ctx, archive.NewReader(recs), opts)
}

// resolveWindow applies the default date range: end today, start seven days
// earlier.
func resolveWindow(startStr, endStr string) (core.Window, error) {
	end := time.Now().UTC()
	if endStr != "" {
		t, err := time.Parse(dateLayout, endStr)
		if err != nil {
			return core.Window{}, errors.Wrapf(err, "invalid end date %q, use YYYY-MM-DD", endStr)
		}
		end = t
	}
	start := end.AddDate(0, 0, -7)
	if startStr != "" {
		t, err := time.Parse(dateLayout, startStr)
		if err != nil {
			return core.Window{}, errors.Wrapf(err, "invalid start date %q, use YYYY-MM-DD", startStr)
		}
		start = t
	}
	if !start.Before(end) {
		return core.Window{}, fmt.Errorf("start date must be before end date")
	}
	return core.Window{Start: start, End: end}, nil
}

func writeChart(s *core.AggregatedSeries, cfg *config.Config, format, outPath string, window core.Window) error {
	r, err := render.New(format, render.Options{
		Title: fmt.Sprintf("Slurm Job Metrics (%s to %s)",
			window.Start.Format(dateLayout), window.End.Format(dateLayout)),
		Width:  cfg.Width,
		Height: cfg.Height,
	})
	if err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer f.Close()
	return r.Render(s, f)
}

func reportDiagnostics(d core.Diagnostics) {
	if d.ParseWarnings > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d malformed records or fields skipped\n", d.ParseWarnings)
	}
	if d.ValidationDrops > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d records dropped for invariant violations\n", d.ValidationDrops)
	}
	if d.Unbucketable > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d records had neither start nor submit time\n", d.Unbucketable)
	}
}

func printSummary(sum *pipeline.Summary, cfg *config.Config, interval core.Interval) {
	fmt.Println("\nSummary:")
	fmt.Printf("  Total jobs: %.0f\n", sum.TotalJobs)
	fmt.Printf("  Used CPU time: %.1f CPU-hours\n", sum.UsedCPUHours)
	fmt.Printf("  Used GPU time: %.1f GPU-hours\n", sum.UsedGPUHours)
	if sum.AvgQueueTime.Valid {
		fmt.Printf("  Average queue time: %.2f %s\n", sum.AvgQueueTime.Value, cfg.TimeUnit)
	}
	if sum.AvgRunTime.Valid {
		fmt.Printf("  Average run time: %.2f %s\n", sum.AvgRunTime.Value, cfg.TimeUnit)
	}
	if sum.MemoryEfficiency.Valid {
		fmt.Printf("  Memory efficiency: %.0f%%\n", sum.MemoryEfficiency.Value*100)
	}
	fmt.Printf("  Date range: %s to %s\n", sum.Start.Format(dateLayout), sum.End.Format(dateLayout))
	fmt.Printf("  Aggregation: %s\n", interval)
}

// interruptContext cancels on SIGINT/SIGTERM so a long accounting query or a
// huge export parse can be aborted cleanly.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func init() {
	rootCmd.AddCommand(plotCmd)

	plotCmd.Flags().StringVarP(&plotStart, StartFlag, "s", "",
		"start date (YYYY-MM-DD), default: 7 days before end")
	plotCmd.Flags().StringVarP(&plotEnd, EndFlag, "e", "",
		"end date (YYYY-MM-DD, exclusive), default: today")
	plotCmd.Flags().StringVarP(&plotAccount, AccountFlag, "A", "",
		"filter by account name")
	plotCmd.Flags().StringVarP(&plotPartition, PartitionFlag, "p", "",
		"filter by partition name")
	plotCmd.Flags().StringVar(&plotState, StateFlag, "",
		"filter by job state (COMPLETED, FAILED, CANCELLED, TIMEOUT, RUNNING, PENDING)")
	plotCmd.Flags().StringVarP(&plotUser, UserFlag, "u", "",
		"filter by username")
	plotCmd.Flags().StringVarP(&plotInterval, IntervalFlag, "i", "day",
		"aggregation interval: hour, day or week")
	plotCmd.Flags().StringSliceVarP(&plotMetrics, MetricsFlag, "m", nil,
		"metrics to plot, default: all")
	plotCmd.Flags().StringVarP(&plotOutput, OutputFlag, "o", "slurm_plot",
		"output filename without extension")
	plotCmd.Flags().StringVarP(&plotFormat, FormatFlag, "f", "png",
		"output format: png, svg or html")
	plotCmd.Flags().BoolVar(&plotInteractive, InteractiveFlag, false,
		"generate an interactive HTML chart")
	plotCmd.Flags().StringVar(&plotLogFile, LogFileFlag, "",
		"read a saved accounting dump instead of querying sacct")
	plotCmd.Flags().BoolVar(&plotFromArchive, FromArchiveFlag, false,
		"read records from the archive database instead of querying sacct")
	plotCmd.Flags().BoolVar(&plotDryRun, DryRunFlag, false,
		"show what would be done without executing")
}
