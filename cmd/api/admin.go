package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cablecom/leads-api/internal/config"
	"github.com/cablecom/leads-api/internal/infra/database"
	"github.com/cablecom/leads-api/internal/logger"
	"github.com/cablecom/leads-api/internal/usecase"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrator account maintenance",
}

var adminSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create or resynchronize the default administrator from configuration",
	Args:  cobra.NoArgs,
	RunE:  runAdminSync,
}

func runAdminSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env)
	defer log.Sync()

	repos, err := database.Open(cmd.Context(), cfg.DatabaseURL, cfg.SQLitePath, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repos.Close()

	creds := usecase.NewCredentialService(repos.Admins, defaultAdmin(cfg), log)
	user, err := creds.EnsureDefaultAdmin(cmd.Context())
	if err != nil {
		return err
	}

	total, err := repos.Admins.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("count admin users: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "admin ready: id=%d username=%s email=%s backend=%s admins=%d\n",
		user.ID, user.Username, user.Email, repos.Backend, total)
	return nil
}
