package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"librairie/pkg/domain"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the authenticated user's account",
	}
	cmd.AddCommand(
		newProfileShowCmd(),
		newProfileUpdateCmd(),
		newProfileDeleteCmd(),
	)
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Fetch and display the profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.session.RequireAuth(); err != nil {
				return err
			}
			ctx, cancel := opContext(cmd)
			defer cancel()
			fetched, err := a.profile.FetchProfile(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), fetched)
		},
	}
}

func newProfileUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		RunE:  runProfileUpdate,
	}
	cmd.Flags().String("username", "", "new username")
	cmd.Flags().String("email", "", "new email address")
	cmd.Flags().String("first-name", "", "new first name")
	cmd.Flags().String("last-name", "", "new last name")
	cmd.Flags().String("password", "", "new password")
	return cmd
}

func runProfileUpdate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.session.RequireAuth(); err != nil {
		return err
	}
	update := domain.ProfileUpdate{}
	update.Username, _ = cmd.Flags().GetString("username")
	update.Email, _ = cmd.Flags().GetString("email")
	update.FirstName, _ = cmd.Flags().GetString("first-name")
	update.LastName, _ = cmd.Flags().GetString("last-name")
	update.Password, _ = cmd.Flags().GetString("password")
	if update == (domain.ProfileUpdate{}) {
		return errors.New("nothing to update")
	}

	ctx, cancel := opContext(cmd)
	defer cancel()
	updated, err := a.profile.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), updated)
}

func newProfileDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			confirmed, _ := cmd.Flags().GetBool("yes")
			if !confirmed {
				return errors.New("refusing to delete the account without --yes")
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.session.RequireAuth(); err != nil {
				return err
			}
			ctx, cancel := opContext(cmd)
			defer cancel()
			if err := a.profile.DeleteProfile(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "confirm deletion")
	return cmd
}
