/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shoptrack/apiserver/config"
	"github.com/shoptrack/apiserver/internal/db"
	"github.com/shoptrack/apiserver/internal/services"
	"github.com/shoptrack/apiserver/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	userCreateUsername string
	userCreateRole     string
	userCreatePassword string
)

// userCmd represents the user command.
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

// Users are created here, not over HTTP. The API only reads them.
var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username := strings.TrimSpace(userCreateUsername)
		if username == "" {
			return errors.New("--username is required")
		}

		password := userCreatePassword
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("read password failed: %w", err)
			}
			password = string(raw)
		}
		if password == "" {
			return errors.New("password must not be empty")
		}

		cfg := config.LoadConfig()
		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open database failed: %w", err)
		}
		defer func() {
			_ = dbConn.Close()
		}()

		users := services.NewUserService(store.NewUserRepository(dbConn))
		user, err := users.Create(cmd.Context(), username, userCreateRole, password)
		if err != nil {
			if errors.Is(err, services.ErrUserExists) {
				return fmt.Errorf("user %q already exists", username)
			}
			return fmt.Errorf("create user failed: %w", err)
		}

		fmt.Printf("created user %q (id %d, role %s)\n", user.Username, user.ID, user.Role)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().StringVar(&userCreateUsername, "username", "", "login name for the new user")
	userCreateCmd.Flags().StringVar(&userCreateRole, "role", "user", "role for the new user")
	userCreateCmd.Flags().StringVar(&userCreatePassword, "password", "", "password (prompted when omitted)")
}
