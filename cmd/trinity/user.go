// If you are AI: This file implements the user command for seeding producer accounts.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trinity/internal/store"
	"trinity/internal/svc/authsvc"
)

var (
	userName     string
	userNickname string
	userPassword string
	userAdmin    bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage producer accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a producer account",
	RunE:  runUserAdd,
}

func init() {
	userAddCmd.Flags().StringVar(&userName, "name", "", "Login name")
	userAddCmd.Flags().StringVar(&userNickname, "nickname", "", "Display name")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "Password")
	userAddCmd.Flags().BoolVar(&userAdmin, "admin", false, "Grant the admin claim")
	_ = userAddCmd.MarkFlagRequired("name")
	_ = userAddCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAddCmd)
}

// runUserAdd creates an account in the configured store.
func runUserAdd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	st, err := store.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := authsvc.NewService(st, nil, nil, nil, logger).Register(cmd.Context(), userName, userNickname, userPassword, userAdmin)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, admin %t)\n", u.Name, u.ID, u.Admin)
	return nil
}
