package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attachehq/attache/config"
)

func newToolsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the registered tools with their parameter schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			app, _, err := wireApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(app.Tools().Definitions(), "", "  ")
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
