package commands

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsentry/netsentry/internal/alerts"
	"github.com/netsentry/netsentry/internal/config"
)

func newAlertsCmd() *cobra.Command {
	var severity string
	var employee string
	var since string
	var openOnly bool
	var limit int
	var ack string

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Query recorded behavior alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				cfg = config.Defaults()
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			store, err := alerts.NewStore(cfg.Alerts.DBPath, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if ack != "" {
				if err := store.Acknowledge(ack); err != nil {
					return err
				}
				fmt.Printf("Acknowledged %s\n", ack)
				return nil
			}

			if severity != "" && !alerts.ValidSeverity(severity) {
				return fmt.Errorf("unknown severity %q (want low, medium, high, or critical)", severity)
			}

			opts := alerts.QueryOpts{
				Severity: severity,
				Employee: employee,
				OpenOnly: openOnly,
				Limit:    limit,
			}
			if since != "" {
				d, err := time.ParseDuration(since)
				if err != nil {
					return fmt.Errorf("invalid --since duration: %w", err)
				}
				opts.Since = time.Now().Add(-d).UTC().Format(time.RFC3339)
			}

			list, err := store.Query(opts)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No alerts matched.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tEMPLOYEE\tCATEGORY\tSEVERITY\tRISK\tACK\tMESSAGE")
			for _, a := range list {
				ackMark := ""
				if a.Acknowledged != 0 {
					ackMark = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
					a.Timestamp, a.Employee, a.Category, a.Severity, a.RiskScore, ackMark, a.Message)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity (low, medium, high, critical)")
	cmd.Flags().StringVar(&employee, "employee", "", "filter by employee name or email")
	cmd.Flags().StringVar(&since, "since", "", "only alerts newer than this duration (e.g. 24h)")
	cmd.Flags().BoolVar(&openOnly, "open", false, "only unacknowledged alerts")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum alerts to print")
	cmd.Flags().StringVar(&ack, "ack", "", "acknowledge the alert with this ID and exit")
	return cmd
}
