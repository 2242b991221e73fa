package main

import (
	"errors"

	"github.com/spf13/cobra"

	"libris/internal/api"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}

	dbCmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check database integrity and schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.LibraryService) error {
				health, err := svc.Health(cmd.Context())
				if ctx.jsonOutput() {
					if encErr := writeJSON(cmd, health); encErr != nil {
						return encErr
					}
				} else {
					r := newRenderer(cmd.OutOrStdout())
					r.section("Database", r.health(health))
				}
				if err != nil {
					return err
				}
				if !health.Healthy {
					return errors.New("database unhealthy")
				}
				return nil
			})
		},
	})

	return dbCmd
}
