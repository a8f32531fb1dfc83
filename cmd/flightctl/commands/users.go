package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flights_backend/internal/auth"
	"flights_backend/internal/models"
	"flights_backend/internal/store"
)

var (
	// Users create flags
	userName      string
	userEmail     string
	userPassword  string
	userModerator bool

	// Users promote flags
	revoke bool
)

// usersCmd groups user account commands
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Long: `Create a user account with a bcrypt hashed password.

Examples:
  flightctl users create --name Ann --email ann@example.com --password s3cret
  flightctl users create --name Mod --email mod@example.com --password s3cret --moderator`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(userPassword) < 6 {
			return errors.New("password must be at least 6 characters")
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		hash, err := auth.HashPassword(userPassword)
		if err != nil {
			return err
		}
		user := &models.User{
			Name:        userName,
			Email:       strings.ToLower(strings.TrimSpace(userEmail)),
			Password:    hash,
			IsModerator: userModerator,
		}
		if err := store.NewUserRepository(db).Create(cmd.Context(), user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return fmt.Errorf("email %s is already in use", user.Email)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", user.ID, user.Email)
		return nil
	},
}

var usersPromoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Grant or revoke the moderator role",
	Long: `Grant or revoke the moderator role. Tokens issued before the change keep
their old role until they expire.

Examples:
  flightctl users promote --email mod@example.com
  flightctl users promote --email mod@example.com --revoke`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		users := store.NewUserRepository(db)
		user, err := users.GetByEmail(cmd.Context(), strings.ToLower(strings.TrimSpace(userEmail)))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no user with email %s", userEmail)
			}
			return err
		}
		user.IsModerator = !revoke
		if err := users.Update(cmd.Context(), user); err != nil {
			return err
		}
		role := "moderator"
		if revoke {
			role = "user"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now a %s\n", user.Email, role)
		return nil
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&userName, "name", "", "Display name")
	usersCreateCmd.Flags().StringVar(&userEmail, "email", "", "Login email")
	usersCreateCmd.Flags().StringVar(&userPassword, "password", "", "Password (at least 6 characters)")
	usersCreateCmd.Flags().BoolVar(&userModerator, "moderator", false, "Create the user as a moderator")
	_ = usersCreateCmd.MarkFlagRequired("name")
	_ = usersCreateCmd.MarkFlagRequired("email")
	_ = usersCreateCmd.MarkFlagRequired("password")

	usersPromoteCmd.Flags().StringVar(&userEmail, "email", "", "Login email")
	usersPromoteCmd.Flags().BoolVar(&revoke, "revoke", false, "Take the moderator role away instead")
	_ = usersPromoteCmd.MarkFlagRequired("email")

	usersCmd.AddCommand(usersCreateCmd, usersPromoteCmd)
	rootCmd.AddCommand(usersCmd)
}
