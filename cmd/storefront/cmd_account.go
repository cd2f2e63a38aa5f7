package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/xenking/kart-storefront/internal/domain/auth"
)

func (c *cli) loginCmd() *cobra.Command {
	var creds auth.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			u, err := a.Shop.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Logged in as %s <%s>.\n", u.Name, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Account password")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var reg auth.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			u, err := a.Shop.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Welcome, %s.\n", u.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "Account password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			a.Shop.Logout(cmd.Context())
			printf(cmd.OutOrStdout(), "Logged out.\n")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			u := a.Store.State().Auth.User
			if u == nil {
				printf(w, "Not logged in.\n")
				return nil
			}
			if u.Expired(time.Now()) {
				printf(w, "Session for %s has expired. Log in again.\n", u.Email)
				return nil
			}
			if refresh {
				if u, err = a.Shop.Profile(cmd.Context()); err != nil {
					return err
				}
			}
			printf(w, "%s <%s>", u.Name, u.Email)
			if u.IsAdmin() {
				printf(w, " %s", okStyle.Render("admin"))
			}
			printf(w, "\n")
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Reload the profile from the API")
	return cmd
}

func (c *cli) profileCmd() *cobra.Command {
	var upd auth.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			u, err := a.Shop.UpdateProfile(cmd.Context(), upd)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Profile updated: %s <%s>.\n", u.Name, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&upd.Name, "name", "", "New display name")
	cmd.Flags().StringVar(&upd.Email, "email", "", "New email")
	return cmd
}
