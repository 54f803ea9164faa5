package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roadsafety/schools-cli/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the destination report tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMigrate(cmd.Context(), cfg)
	},
}

// runMigrate creates the report tables in the store named by c.
func runMigrate(ctx context.Context, c *config.Config) error {
	if err := c.Validate("migrate"); err != nil {
		return err
	}
	st, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "migrate")
	}
	zap.L().Info("migrations applied", zap.String("driver", c.Store.Driver))
	return nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
