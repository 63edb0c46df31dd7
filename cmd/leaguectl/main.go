// Command leaguectl is the league administration tool: it previews pairings and scores
// matches from JSON files or straight from the database, applies migrations and mints
// tokens for local testing.
package main

import (
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
)

func main() {
	app := &cli{out: os.Stdout, clock: clockwork.NewRealClock()}
	if err := newRootCmd(app).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
