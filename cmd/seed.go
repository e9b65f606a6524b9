package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khrees2412/jobsphere/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo accounts, jobs and applications",
	Long:  "Insert the demo data set. Databases that already have users are left untouched.",
	Example: `  jobsphere seed
  jobsphere seed --file fixtures.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		data, err := loadSeedData(cmd)
		if err != nil {
			return err
		}

		result, err := seed.Run(cmd.Context(), a.Store, data, a.Config.Auth.BcryptCost, a.Logger)
		if err != nil {
			return err
		}

		if result.Skipped {
			fmt.Println("Database already has users; nothing to do.")
			return nil
		}
		fmt.Println(titleStyle.Render("Seeded"))
		fmt.Printf("%s %s\n", labelStyle.Render("Users:"), valueStyle.Render(fmt.Sprint(result.Users)))
		fmt.Printf("%s %s\n", labelStyle.Render("Jobs:"), valueStyle.Render(fmt.Sprint(result.Jobs)))
		fmt.Printf("%s %s\n", labelStyle.Render("Applications:"), valueStyle.Render(fmt.Sprint(result.Applications)))
		return nil
	},
}

func loadSeedData(cmd *cobra.Command) (*seed.Data, error) {
	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		return seed.Default()
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return seed.Parse(raw)
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("file", "", "YAML seed file (defaults to the built-in demo data)")
}
