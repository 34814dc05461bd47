package cli

import (
	"github.com/painel-financeiro/painel/internal/config"
	"github.com/painel-financeiro/painel/internal/database"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var down int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the session store migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			return database.Migrate(cfg.Database, -down)
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "roll back this many migrations instead")
	return cmd
}
