package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/netsentry/netsentry/sdk"
)

var (
	recordsHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	recordsCellStyle   = lipgloss.NewStyle().PaddingRight(2)
	recordsCountStyle  = lipgloss.NewStyle().Faint(true)
)

func newRecordsCmd() *cobra.Command {
	var server string
	var token string
	var refresh bool

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Fetch and print the remote analysis records",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := sdk.NewClient(server, token)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			resp, err := client.Records(ctx, refresh)
			if err != nil {
				return err
			}
			if resp.Count == 0 {
				fmt.Println("No records.")
				return nil
			}

			widths := make([]int, len(resp.Fields))
			for i, f := range resp.Fields {
				widths[i] = len(f)
				for _, rec := range resp.Records {
					if n := len(rec[f]); n > widths[i] {
						widths[i] = n
					}
				}
			}

			var header strings.Builder
			for i, f := range resp.Fields {
				header.WriteString(recordsCellStyle.Render(pad(f, widths[i])))
			}
			fmt.Println(recordsHeaderStyle.Render(header.String()))

			for _, rec := range resp.Records {
				var row strings.Builder
				for i, f := range resp.Fields {
					row.WriteString(recordsCellStyle.Render(pad(rec[f], widths[i])))
				}
				fmt.Println(row.String())
			}

			fmt.Println(recordsCountStyle.Render(fmt.Sprintf("%d record(s)", resp.Count)))
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "daemon base URL")
	cmd.Flags().StringVar(&token, "session-token", "", "dashboard session token")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "force a refetch past the daemon's memo")
	return cmd
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
