package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/netsentry/netsentry/sdk"
)

func newChatCmd() *cobra.Command {
	var server string
	var token string
	var reset bool

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send one message through a running daemon's analysis pipeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := sdk.NewClient(server, token)
			ctx, cancel := context.WithTimeout(cmd.Context(), 90*time.Second)
			defer cancel()

			if reset {
				if err := client.ResetChat(ctx); err != nil {
					return err
				}
				fmt.Println("Conversation reset.")
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("a message is required (or pass --reset)")
			}

			resp, err := client.SendChat(ctx, args[0])
			if err != nil {
				return err
			}

			outcome := color.New(color.FgGreen)
			switch resp.Outcome {
			case "rejected", "failed", "timed_out":
				outcome = color.New(color.FgRed)
			case "short_circuited":
				outcome = color.New(color.FgYellow)
			}
			outcome.Printf("[%s]\n", resp.Outcome)

			// The last assistant entry is the reply to this submission.
			for i := len(resp.Messages) - 1; i >= 0; i-- {
				if resp.Messages[i].Role == "assistant" {
					fmt.Println(strings.TrimSpace(resp.Messages[i].Content))
					break
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "daemon base URL")
	cmd.Flags().StringVar(&token, "session-token", "", "dashboard session token")
	cmd.Flags().BoolVar(&reset, "reset", false, "clear the conversation instead of sending")
	return cmd
}
