package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/trainlog/trainlog/internal/config"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/service"
)

func usersCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: withDB(opts, func(cmd *cobra.Command, args []string, database *sqlx.DB, cfg *config.Config) error {
			users, err := repository.NewUserRepository(database).Users(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tUSERNAME\tROLE\tCREATED")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Username, u.Role, u.CreatedAt)
			}
			return tw.Flush()
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "role <email> <user|admin>",
		Short: "Change an account's role",
		Args:  cobra.ExactArgs(2),
		RunE: withDB(opts, func(cmd *cobra.Command, args []string, database *sqlx.DB, cfg *config.Config) error {
			repo := repository.NewUserRepository(database)
			user, err := repo.ByEmail(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("no account for %s: %w", args[0], err)
			}

			// The CLI acts as no particular account, so actor 0 never trips the self check.
			updated, err := service.NewUserService(repo, nil).UpdateRole(cmd.Context(), 0, user.ID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.Email, updated.Role)
			return nil
		}),
	})

	return cmd
}
