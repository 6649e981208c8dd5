package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/hpcfair/slurmplot/internal/archive"
	"github.com/hpcfair/slurmplot/internal/config"
	"github.com/hpcfair/slurmplot/internal/parse"
	"github.com/hpcfair/slurmplot/internal/source"
	"github.com/hpcfair/slurmplot/pkg/core"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Flags for archive
const (
	DSNFlag         = "dsn"
	PruneBeforeFlag = "prune-before"
)

var archiveStart string
var archiveEnd string
var archiveLogFile string
var archiveDSN string
var archivePruneBefore string

// archiveCmd imports a window of raw job records into the archive database.
// Only raw records are stored; aggregation still happens per plot run.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Import job accounting records into the archive database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		dsn := cfg.ArchiveDSN
		if archiveDSN != "" {
			dsn = archiveDSN
		}
		if dsn == "" {
			return fmt.Errorf("no archive DSN: set archive.dsn in the config file or pass --%s", DSNFlag)
		}
		dao, err := archive.NewDao(dsn)
		if err != nil {
			return err
		}

		if archivePruneBefore != "" {
			cutoff, err := time.Parse(dateLayout, archivePruneBefore)
			if err != nil {
				return errors.Wrapf(err, "invalid prune date %q, use YYYY-MM-DD", archivePruneBefore)
			}
			if err := dao.RemoveBefore(cutoff); err != nil {
				return err
			}
			fmt.Println("Pruned records submitted before:", archivePruneBefore)
		}

		window, err := resolveWindow(archiveStart, archiveEnd)
		if err != nil {
			return err
		}

		log := logrus.WithField("component", "archive")
		var src source.Source
		if archiveLogFile != "" {
			src = source.NewFile(archiveLogFile)
		} else {
			src = source.NewSacct(cfg, window, core.Filter{}, log)
		}

		ctx, cancel := interruptContext()
		defer cancel()

		raw, err := src.Fetch(ctx)
		if err != nil {
			return err
		}
		defer raw.Close()

		reader := parse.NewReader(raw, nil, log)
		var recs []*core.JobRecord
		for {
			rec, err := reader.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}

		if err := dao.SaveJobRecords(recs); err != nil {
			return err
		}
		diag := reader.Diagnostics()
		fmt.Printf("Archived %d job records (%d parse warnings)\n", len(recs), diag.ParseWarnings)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVarP(&archiveStart, StartFlag, "s", "",
		"start date (YYYY-MM-DD), default: 7 days before end")
	archiveCmd.Flags().StringVarP(&archiveEnd, EndFlag, "e", "",
		"end date (YYYY-MM-DD, exclusive), default: today")
	archiveCmd.Flags().StringVar(&archiveLogFile, LogFileFlag, "",
		"import from a saved accounting dump instead of querying sacct")
	archiveCmd.Flags().StringVar(&archiveDSN, DSNFlag, "",
		"archive database DSN, overrides archive.dsn from the config file")
	archiveCmd.Flags().StringVar(&archivePruneBefore, PruneBeforeFlag, "",
		"delete archived records submitted before this date (YYYY-MM-DD)")
}
