package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksred/fxjournal/internal/auth"
)

var (
	adminUsername string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a dashboard account",
	Args:  cobra.NoArgs,
	RunE:  runCreateAdmin,
}

func init() {
	rootCmd.AddCommand(createAdminCmd)
	createAdminCmd.Flags().StringVarP(&adminUsername, "username", "u", "", "account name (required)")
	createAdminCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "account password (required)")
	createAdminCmd.MarkFlagRequired("username")
	createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	service := auth.NewService(e.db, e.cfg.JWTSecret, e.cfg.TokenTTL)
	admin, err := service.Register(cmd.Context(), auth.Credentials{Username: adminUsername, Password: adminPassword})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created\n", admin.Username)
	return nil
}
