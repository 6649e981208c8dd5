package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/hpcfair/slurmplot/internal/config"
	"github.com/hpcfair/slurmplot/pkg/core"
	"github.com/spf13/cobra"
)

// metricsCmd prints the metric definition table: the stable name surface, the
// aggregation each metric uses and its display unit under the configured
// canonical units.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List the available metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tAGGREGATION\tUNIT\tLABEL")
		for _, name := range core.MetricNames {
			def, err := core.LookupMetric(name)
			if err != nil {
				return err
			}
			label := def.Label
			if def.AliasOf != "" {
				label = fmt.Sprintf("%s (alias of %s)", def.Label, def.AliasOf)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				def.Name, def.Class, def.Kind.DisplayUnit(cfg.MemoryUnit, cfg.TimeUnit), label)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
