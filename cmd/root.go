package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khrees2412/jobsphere/internal/app"
	"github.com/khrees2412/jobsphere/internal/config"
)

// Commands carrying this annotation manage their own resources and run
// without the shared App.
const standaloneAnnotation = "standalone"

var (
	configPath string
	current    *app.App
)

var rootCmd = &cobra.Command{
	Use:   "jobsphere",
	Short: "Job board REST API",
	Long: `JobSphere serves a job board API: accounts, job postings and applications.
It also manages the database schema, demo data and user accounts.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(configPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if isStandalone(cmd) {
			return nil
		}

		// Initialize app with all dependencies
		application, err := app.NewApp(cmd.Context(), config.AppConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		// Store app in command context; run closes it once the command returns
		current = application
		cmd.SetContext(app.WithApp(cmd.Context(), application))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $HOME/.jobsphere/config.yaml)")
}

func isStandalone(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[standaloneAnnotation] == "true" {
			return true
		}
	}
	return false
}

// appFrom returns the App set up by the root command
func appFrom(cmd *cobra.Command) (*app.App, error) {
	return app.FromContext(cmd.Context())
}

// run executes the command line in args and closes the App afterwards,
// whether or not the command failed.
func run(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)

	if current != nil {
		if cerr := current.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "failed to close app: %v\n", cerr)
		}
		current = nil
	}
	return err
}

// Execute runs the root command; SIGINT and SIGTERM cancel its context
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
