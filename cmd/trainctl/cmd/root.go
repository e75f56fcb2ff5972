// Package cmd holds the trainctl operator commands. Every command works on
// the database directly, so it can run while the server is stopped.
package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/trainlog/trainlog/internal/config"
	"github.com/trainlog/trainlog/internal/db"
)

type options struct {
	dbPath string
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "trainctl",
		Short:         "Operator tools for the trainlog database",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path (defaults to DB_PATH)")

	rootCmd.AddCommand(migrateCmd(opts))
	rootCmd.AddCommand(sessionsCmd(opts))
	rootCmd.AddCommand(aclCmd(opts))
	rootCmd.AddCommand(usersCmd(opts))

	return rootCmd
}

// config loads the environment config with the --db override applied.
func (o *options) config() (*config.Config, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	return cfg, nil
}

// open connects to the database and applies pending migrations.
func (o *options) open() (*sqlx.DB, *config.Config, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, nil, err
	}
	database, err := db.Init(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(database.DB); err != nil {
		_ = database.Close()
		return nil, nil, err
	}
	return database, cfg, nil
}

func withDB(opts *options, fn func(cmd *cobra.Command, args []string, database *sqlx.DB, cfg *config.Config) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		database, cfg, err := opts.open()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
		return fn(cmd, args, database, cfg)
	}
}
