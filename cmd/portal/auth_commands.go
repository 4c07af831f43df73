package main

import (
	"fmt"

	"github.com/itportal/go-portal-client/client"
	"github.com/spf13/cobra"
)

func newLoginCommand(a *app, appname string) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(appname)

			result, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Signed in as %s (%s)\n", email, result.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear local session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(a); err != nil {
				return err
			}
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(a); err != nil {
				return err
			}
			info, err := a.client.CheckSession(cmd.Context())
			if err != nil {
				return err
			}
			if !info.IsAuthenticated {
				return fmt.Errorf("session is no longer valid")
			}
			fmt.Printf("%s (%s), user id %d\n", info.User.Username, info.User.Role, info.User.UserID)
			return nil
		},
	}
}

func newRefreshCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Renew the session without re-entering credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(a); err != nil {
				return err
			}
			if err := a.client.RefreshSession(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Session refreshed")
			return nil
		},
	}
}

func newRegisterCommand(a *app) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a portal account",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.client.Register(cmd.Context(), client.RegisterRequest{
				Username: username,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Account created for %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
