package cmd

import (
	"github.com/spf13/cobra"

	"github.com/khrees2412/jobsphere/internal/api"
	"github.com/khrees2412/jobsphere/internal/seed"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Serve the JobSphere REST API until interrupted, then shut down gracefully",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		withSeed, _ := cmd.Flags().GetBool("seed")
		if withSeed {
			data, err := seed.Default()
			if err != nil {
				return err
			}
			if _, err := seed.Run(cmd.Context(), a.Store, data, a.Config.Auth.BcryptCost, a.Logger); err != nil {
				return err
			}
		}

		return api.New(a).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("seed", false, "Load demo data into an empty database before serving")
}
