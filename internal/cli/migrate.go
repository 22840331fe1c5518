package cli

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/storygrid-backend/internal/data/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and seed the built-in templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			pg, err := db.NewPostgresService(log)
			if err != nil {
				return err
			}
			defer pg.Close()

			if err := db.AutoMigrateAll(pg.DB()); err != nil {
				return err
			}
			if err := db.SeedTemplates(cmd.Context(), pg.DB()); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}
