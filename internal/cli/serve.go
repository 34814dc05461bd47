package cli

import (
	"github.com/painel-financeiro/painel/internal/app"
	"github.com/painel-financeiro/painel/internal/config"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			application, err := app.NewApplication(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}
}
