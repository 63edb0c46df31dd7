package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/trentd187/golf-league-matchups/internal/database"
	"github.com/trentd187/golf-league-matchups/internal/middleware"
)

func newMigrateCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.DatabaseURL == "" {
				return errors.New("no database: set --database-url or DATABASE_URL")
			}
			return database.RunMigrations(app.cfg.DatabaseURL, app.cfg.MigrationsPath, app.log)
		},
	}
	cmd.Flags().String("source", "", "Migration source URL (default $MIGRATIONS_PATH or file://migrations)")
	_ = app.v.BindPFlag("migrations_path", cmd.Flags().Lookup("source"))
	return cmd
}

func newTokenCmd(app *cli) *cobra.Command {
	var (
		subject string
		role    string
		name    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.JWTSecret == "" {
				return errors.New("no signing secret: set --jwt-secret or JWT_SECRET")
			}
			token, err := middleware.SignToken([]byte(app.cfg.JWTSecret), app.clock, subject, role, name, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(app.out, token)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&subject, "subject", "", "Token subject (the user's external id)")
	f.StringVar(&role, "role", "user", "Role claim: admin, manager or user")
	f.StringVar(&name, "name", "", "Display name claim")
	f.DurationVar(&ttl, "ttl", 24*time.Hour, "How long the token stays valid")
	f.String("jwt-secret", "", "HMAC signing secret (default $JWT_SECRET)")
	_ = app.v.BindPFlag("jwt_secret", f.Lookup("jwt-secret"))
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
