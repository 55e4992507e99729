// If you are AI: This file implements the token command, which prints a JWT for scripted producers.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"trinity/internal/auth"
	"trinity/internal/store"
	"trinity/internal/svc/authsvc"
)

var (
	tokenName     string
	tokenPassword string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Log in and print a bearer token",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "Login name")
	tokenCmd.Flags().StringVar(&tokenPassword, "password", "", "Password")
	_ = tokenCmd.MarkFlagRequired("name")
	_ = tokenCmd.MarkFlagRequired("password")
}

// runToken logs in with the given credentials and prints the token.
func runToken(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if !cfg.Auth.Enabled {
		return errors.New("auth is disabled in this configuration")
	}

	st, err := store.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := authsvc.NewService(st, auth.NewIssuer(cfg.Auth), nil, nil, logger)
	token, err := svc.Login(cmd.Context(), tokenName, tokenPassword)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
