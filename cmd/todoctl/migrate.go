package main

import (
	"github.com/spf13/cobra"

	"github.com/redmonkez12/todo-api/cmd/todoctl/ui"
	"github.com/redmonkez12/todo-api/internal/database"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}
			group, err := database.Migrate(cmd.Context(), db)
			if err != nil {
				return err
			}
			if group.IsZero() {
				ui.PrintSuccess("database is up to date")
				return nil
			}
			ui.PrintSuccess("migrated to " + group.String())
			return nil
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration group",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}
			group, err := database.Rollback(cmd.Context(), db)
			if err != nil {
				return err
			}
			if group.IsZero() {
				ui.PrintSuccess("nothing to roll back")
				return nil
			}
			ui.PrintSuccess("rolled back " + group.String())
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}
			applied, pending, err := database.Status(cmd.Context(), db)
			if err != nil {
				return err
			}
			ui.PrintMigrations(applied, pending)
			return nil
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}
