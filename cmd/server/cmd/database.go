package cmd

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newDatabaseCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "database",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "upgrade",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := global.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database upgraded")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show-revision",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := global.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)
			v, err := database.Version(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current revision: %d\n", v)
			return nil
		},
	})

	cmd.AddCommand(newDestructiveCommand(global, "reset", "Drop everything and re-apply all migrations", database.Reset))
	cmd.AddCommand(newDestructiveCommand(global, "purge", "Roll back every migration", database.Purge))
	return cmd
}

type migrationFunc = func(ctx context.Context, db *gorm.DB) error

// newDestructiveCommand asks for confirmation unless --no-prompt is given.
func newDestructiveCommand(global *globalOptions, use, short string, run migrationFunc) *cobra.Command {
	var noPrompt bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !noPrompt {
				ok, err := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).
					confirm(fmt.Sprintf("Are you sure you want to %s the database?", use))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			_, db, err := global.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := run(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s complete\n", use)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "do not ask for confirmation")
	return cmd
}
