// Package cmd implements the attache command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "attache",
		Short:         "attache: a tool-first assistant with agents, memory and an HTTP API",
		Long:          "attache routes each request to one of five specialized agents, answers with deterministic tools where it can and a model where it must, and keeps per-session history plus a long-term memory bank.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (default: search for attache.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(&configPath),
		newAskCmd(&configPath),
		newToolsCmd(&configPath),
	)

	return rootCmd
}
