package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Global flags
const (
	ConfigFlag  = "config"
	VerboseFlag = "verbose"
)

var cfgFile string
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "slurmplot",
	Short: "Extract, aggregate and plot Slurm job accounting data",
	Long: `slurmplot queries the Slurm accounting system (or a saved accounting
dump), aggregates job records into time-bucketed resource-usage metrics and
renders the result as a static or interactive chart.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logrus.SetLevel(logrus.InfoLevel)
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, ConfigFlag, "c", "",
		"path to configuration file (default: ./slurmplot.ini, ~/.slurmplot/config.ini, /etc/slurmplot/config.ini)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, VerboseFlag, "v", false,
		"enable verbose output")
}
