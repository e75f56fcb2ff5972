package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/trainlog/trainlog/internal/config"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/session"
)

func sessionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Session maintenance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Delete sessions older than SESSION_LIFETIME_HOURS",
		Args:  cobra.NoArgs,
		RunE: withDB(opts, func(cmd *cobra.Command, args []string, database *sqlx.DB, cfg *config.Config) error {
			manager := session.NewManager(repository.NewSessionRepository(database), cfg.SessionLifetime())
			n, err := manager.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired sessions\n", n)
			return nil
		}),
	})

	return cmd
}
