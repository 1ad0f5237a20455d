package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RiskiJayaPutra/whfood/internal/auth"
	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
	"github.com/RiskiJayaPutra/whfood/internal/logging"
	"github.com/RiskiJayaPutra/whfood/internal/users"
	"github.com/RiskiJayaPutra/whfood/migrations"
)

var (
	databaseURL string
	logger      *zap.Logger

	adminName     string
	adminEmail    string
	adminPassword string
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Database tooling for WHFood",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if databaseURL == "" {
			return errors.New("DATABASE_URL is not set (use --database-url)")
		}
		var err error
		logger, err = logging.New(os.Getenv("ENV"))
		return err
	},
}

// upCmd applies the embedded schema. Every statement is idempotent.
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply the database schema",
	RunE:  runUp,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account, or promote and reset an existing one",
	Long: `Create an admin account for the moderation panel.

If a user with the email already exists it is promoted to admin and its
password is replaced. The password may be given with --password or the
ADMIN_PASSWORD environment variable.`,
	RunE: runCreateAdmin,
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")

	createAdminCmd.Flags().StringVar(&adminName, "name", "Admin", "display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", os.Getenv("ADMIN_PASSWORD"), "login password, at least 8 characters")
	_ = createAdminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(upCmd, createAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runUp(cmd *cobra.Command, args []string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	logger.Info("applying migrations")
	if _, err := db.ExecContext(ctx, migrations.SQL); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("migrations applied")
	return nil
}

func checkAdminInput(name, email, password string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("--name must not be empty")
	case !strings.Contains(email, "@"):
		return errors.New("--email must be a valid email address")
	case len(password) < 8:
		return errors.New("password must be at least 8 characters (--password or ADMIN_PASSWORD)")
	}
	return nil
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	if err := checkAdminInput(adminName, adminEmail, adminPassword); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	pool, err := dbutil.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}
	u, err := users.Repo{DB: pool}.EnsureAdmin(ctx, strings.TrimSpace(adminName), adminEmail, hash)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.Info("admin ready", zap.Int64("user_id", u.ID), zap.String("email", u.Email))
	return nil
}
