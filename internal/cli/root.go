// Package cli holds the painel commands.
package cli

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "./config/application.yaml"

// NewRootCommand builds the painel command. Without a subcommand it serves.
func NewRootCommand() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "painel",
		Short:         "Backend for the finance admin panel",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if logLevel == "" {
				return nil
			}
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
	}
	root.PersistentFlags().String("config", defaultConfigPath, "configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	serve := serveCmd()
	root.RunE = serve.RunE
	root.AddCommand(serve)
	root.AddCommand(migrateCmd())
	root.AddCommand(parcelasCmd())
	return root
}

func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
