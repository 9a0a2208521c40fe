package commands

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "netsentry",
		Short: "Employee network-behavior monitoring dashboard",
		Long:  "Netsentry — Behavior analytics, alerting, and log intake for employee network monitoring. Single binary.",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "netsentry.yaml", "config file path")

	root.AddCommand(
		newServeCmd(),
		newInitCmd(),
		newChatCmd(),
		newRecordsCmd(),
		newAlertsCmd(),
		newLoginCmd(),
		newVersionCmd(),
	)

	return root
}
