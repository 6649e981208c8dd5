package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/hpcfair/slurmplot/internal/config"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			home, err := homedir.Dir()
			if err != nil {
				return err
			}
			path = filepath.Join(home, ".slurmplot", "config.ini")
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Println("Default configuration written to:", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}
