package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/trainlog/trainlog/internal/config"
	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/repository"
)

func aclCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acl",
		Short: "Manage access rules (enforced when ACL_ON=true)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List access rules",
		Args:  cobra.NoArgs,
		RunE: withDB(opts, func(cmd *cobra.Command, args []string, database *sqlx.DB, cfg *config.Config) error {
			rules, err := repository.NewACLRepository(database).Rules(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tROLES\tMETHOD\tROUTE\tRULE")
			for _, r := range rules {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.UserRoles, r.Method, r.Route, r.Allow)
			}
			return tw.Flush()
		}),
	})

	var roles, method, route string
	var deny bool
	add := &cobra.Command{
		Use:   "add",
		Short: "Add an access rule",
		Args:  cobra.NoArgs,
		RunE: withDB(opts, func(cmd *cobra.Command, args []string, database *sqlx.DB, cfg *config.Config) error {
			if strings.TrimSpace(roles) == "" || strings.TrimSpace(route) == "" {
				return fmt.Errorf("--roles and --route are required")
			}
			rule := &model.ACLRule{
				UserRoles: roles,
				Method:    strings.ToUpper(method),
				Route:     route,
				Allow:     model.ACLAllow,
			}
			if deny {
				rule.Allow = model.ACLDisallow
			}

			id, err := repository.NewACLRepository(database).Create(cmd.Context(), rule)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added rule %d\n", id)
			return nil
		}),
	}
	add.Flags().StringVar(&roles, "roles", "", "comma-separated roles (user, admin, anonymous)")
	add.Flags().StringVar(&method, "method", "*", "HTTP method or *")
	add.Flags().StringVar(&route, "route", "", "route prefix, e.g. /api/admin")
	add.Flags().BoolVar(&deny, "deny", false, "create a disallow rule")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an access rule",
		Args:  cobra.ExactArgs(1),
		RunE: withDB(opts, func(cmd *cobra.Command, args []string, database *sqlx.DB, cfg *config.Config) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule id %q", args[0])
			}
			if err := repository.NewACLRepository(database).Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed rule %d\n", id)
			return nil
		}),
	})

	return cmd
}
