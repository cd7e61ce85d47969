package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"surfapp/internal/models"

	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
	regName      string
	regRole      string
	whoamiFresh  bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		password, err := passwordOrPrompt(authPassword)
		if err != nil {
			return err
		}
		err = a.auth.Register(ctx, models.RegisterRequest{
			Email:    authEmail,
			Password: password,
			Name:     regName,
			Role:     models.Role(regRole),
		})
		if err != nil {
			return err
		}
		return printUser(a.auth.Snapshot().User)
	}),
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		password, err := passwordOrPrompt(authPassword)
		if err != nil {
			return err
		}
		if err := a.auth.Login(ctx, authEmail, password); err != nil {
			return err
		}
		return printUser(a.auth.Snapshot().User)
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.requireUser(); err != nil {
			return err
		}
		if whoamiFresh {
			if err := a.auth.Revalidate(ctx); err != nil {
				return err
			}
		}
		return printUser(a.auth.Snapshot().User)
	}),
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "account password (prompted when empty)")
		_ = c.MarkFlagRequired("email")
	}
	registerCmd.Flags().StringVar(&regName, "name", "", "display name")
	registerCmd.Flags().StringVar(&regRole, "role", string(models.RoleSurfer), "surfer or photographer")
	whoamiCmd.Flags().BoolVar(&whoamiFresh, "refresh", false, "confirm the session with the backend first")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
}

func passwordOrPrompt(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
