package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khrees2412/jobsphere/internal/app"
	"github.com/khrees2412/jobsphere/internal/auth"
	"github.com/khrees2412/jobsphere/internal/database"
	"github.com/khrees2412/jobsphere/pkg/models"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Long:  "Create, list and promote JobSphere accounts without going through the API",
}

var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account",
	Example: `  jobsphere user create --name "Admin User" --email admin@jobsphere.com --password admin123 --role admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		in := auth.RegisterInput{}
		in.Name, _ = cmd.Flags().GetString("name")
		in.Email, _ = cmd.Flags().GetString("email")
		in.Password, _ = cmd.Flags().GetString("password")
		in.Role, _ = cmd.Flags().GetString("role")
		in.Phone, _ = cmd.Flags().GetString("phone")
		in.Location, _ = cmd.Flags().GetString("location")

		session, err := authService(a).Register(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("failed to create user: %s", app.Message(err))
		}

		fmt.Println(successStyle.Render("✓ User created"))
		printUser(session.User)
		return nil
	},
}

var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		users, err := a.Store.ListUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		if len(users) == 0 {
			fmt.Println("No users yet. Use 'jobsphere user create' or 'jobsphere seed'.")
			return nil
		}

		fmt.Println(titleStyle.Render(fmt.Sprintf("Users (%d)", len(users))))
		for _, u := range users {
			role := valueStyle.Render(string(u.Role))
			if u.IsAdmin() {
				role = adminStyle.Render(string(u.Role))
			}
			fmt.Printf("%s %-30s %s  %s\n",
				labelStyle.Render(fmt.Sprintf("#%d", u.ID)),
				u.Email,
				role,
				valueStyle.Render(u.Name))
		}
		return nil
	},
}

var promoteUserCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role to an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		user, err := promote(cmd, a.Store, args[0])
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("✓ " + user.Email + " is now an admin"))
		return nil
	},
}

func promote(cmd *cobra.Command, users database.UserRepository, email string) (*models.User, error) {
	user, err := users.GetUserByEmail(cmd.Context(), auth.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("no user with email %s: %w", strings.TrimSpace(email), err)
	}
	if user.IsAdmin() {
		return user, nil
	}
	user.Role = models.RoleAdmin
	if err := users.UpdateUser(cmd.Context(), user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func authService(a *app.App) *auth.Service {
	tokens := auth.NewTokenManager(a.Config.Auth.JWTSecret, a.Config.Auth.TokenTTL, a.Config.Auth.Issuer)
	return auth.NewService(a.Store, tokens, a.Config.Auth.BcryptCost, a.Logger)
}

func printUser(u *models.User) {
	fmt.Printf("%s %s\n", labelStyle.Render("ID:"), valueStyle.Render(fmt.Sprint(u.ID)))
	fmt.Printf("%s %s\n", labelStyle.Render("Name:"), valueStyle.Render(u.Name))
	fmt.Printf("%s %s\n", labelStyle.Render("Email:"), valueStyle.Render(u.Email))
	fmt.Printf("%s %s\n", labelStyle.Render("Role:"), valueStyle.Render(string(u.Role)))
	if u.Location != "" {
		fmt.Printf("%s %s\n", labelStyle.Render("Location:"), valueStyle.Render(u.Location))
	}
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(createUserCmd)
	userCmd.AddCommand(listUsersCmd)
	userCmd.AddCommand(promoteUserCmd)

	createUserCmd.Flags().String("name", "", "Full name")
	createUserCmd.Flags().String("email", "", "Email address")
	createUserCmd.Flags().String("password", "", "Password (6-72 characters)")
	createUserCmd.Flags().String("role", "user", "Role: user or admin")
	createUserCmd.Flags().String("phone", "", "Phone number")
	createUserCmd.Flags().String("location", "", "Location")
	_ = createUserCmd.MarkFlagRequired("name")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
}
