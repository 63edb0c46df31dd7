package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/trentd187/golf-league-matchups/internal/config"
	"github.com/trentd187/golf-league-matchups/internal/database"
	"github.com/trentd187/golf-league-matchups/internal/logging"
	"github.com/trentd187/golf-league-matchups/internal/store"
)

// cli is the state shared by every command.
type cli struct {
	out   io.Writer
	clock clockwork.Clock
	// open connects to the database; nil means database.Connect.
	open func(dsn string, log logrus.FieldLogger) (*gorm.DB, error)

	v   *viper.Viper
	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd(app *cli) *cobra.Command {
	if app.clock == nil {
		app.clock = clockwork.NewRealClock()
	}
	app.v = config.NewViper()

	rootCmd := &cobra.Command{
		Use:           "leaguectl",
		Short:         "Golf league administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.cfg = config.FromViper(app.v)
			// Logs go to stderr so stdout stays clean for JSON output.
			app.log = logging.NewWithOutput(os.Stderr, app.cfg.LogLevel, app.cfg.LogFormat, false)
			return nil
		},
	}
	rootCmd.SetOut(app.out)

	flags := rootCmd.PersistentFlags()
	flags.String("database-url", "", "PostgreSQL connection URL (default $DATABASE_URL)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	_ = app.v.BindPFlag("database_url", flags.Lookup("database-url"))
	_ = app.v.BindPFlag("log_level", flags.Lookup("log-level"))

	rootCmd.AddCommand(
		newPairingsCmd(app),
		newScoreCmd(app),
		newMigrateCmd(app),
		newTokenCmd(app),
	)
	return rootCmd
}

func (app *cli) store() (*store.Store, error) {
	if app.cfg.DatabaseURL == "" && app.open == nil {
		return nil, errors.New("no database: set --database-url or DATABASE_URL")
	}
	open := app.open
	if open == nil {
		open = func(dsn string, log logrus.FieldLogger) (*gorm.DB, error) {
			return database.Connect(dsn, log, false)
		}
	}
	db, err := open(app.cfg.DatabaseURL, app.log)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return store.New(db), nil
}

func readJSON(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

func (app *cli) writeJSON(v any) error {
	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// checkOutput validates an --output value.
func checkOutput(format string) error {
	switch strings.ToLower(format) {
	case "json", "table":
		return nil
	}
	return fmt.Errorf("unknown output format %q (want json or table)", format)
}
