package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/attachehq/attache/config"
	"github.com/attachehq/attache/core"
)

func newAskCmd(configPath *string) *cobra.Command {
	var (
		sessionID string
		agentName string
	)

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message and print the response as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			app, _, err := wireApp(ctx, cfg)
			if err != nil {
				return err
			}

			message := strings.Join(args, " ")

			var resp *core.Response
			if agentName != "" {
				resp, err = app.AskAgent(ctx, agentName, sessionID, message)
			} else {
				resp, err = app.Ask(ctx, sessionID, message)
			}
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id (empty starts a new session)")
	cmd.Flags().StringVarP(&agentName, "agent", "a", "", "dispatch directly to a named agent")

	return cmd
}
