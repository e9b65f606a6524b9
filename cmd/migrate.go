package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/khrees2412/jobsphere/internal/config"
	"github.com/khrees2412/jobsphere/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:         "migrate",
	Short:       "Manage the database schema",
	Long:        "Apply or roll back schema migrations for the configured SQL database",
	Annotations: map[string]string{standaloneAnnotation: "true"},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(db *sqlx.DB) error {
			if err := database.RunMigrations(db); err != nil {
				return err
			}
			return printVersion(db)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Example: `  jobsphere migrate down --steps 1
  jobsphere migrate down --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		all, _ := cmd.Flags().GetBool("all")
		if all {
			steps = 0
		} else if steps <= 0 {
			return fmt.Errorf("--steps must be positive (or use --all)")
		}

		return withDatabase(cmd, func(db *sqlx.DB) error {
			if err := database.RollbackMigrations(db, steps); err != nil {
				return err
			}
			return printVersion(db)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, printVersion)
	},
}

func withDatabase(cmd *cobra.Command, fn func(db *sqlx.DB) error) error {
	cfg := config.AppConfig
	if cfg.Database.Driver == config.DriverMemory {
		return fmt.Errorf("the memory driver has no schema to migrate")
	}
	db, err := database.Open(cmd.Context(), cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func printVersion(db *sqlx.DB) error {
	version, dirty, err := database.MigrationVersion(db)
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Printf("%s %s\n", labelStyle.Render("Schema version:"), valueStyle.Render(fmt.Sprintf("%d (%s)", version, state)))
	return nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)

	migrateDownCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	migrateDownCmd.Flags().Bool("all", false, "Roll back every migration")
}
