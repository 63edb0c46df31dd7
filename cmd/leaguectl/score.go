package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trentd187/golf-league-matchups/internal/handicap"
	"github.com/trentd187/golf-league-matchups/internal/scoring"
)

// scoreInput is the file form of a match to score.
type scoreInput struct {
	Match scoring.Match          `json:"match"`
	Home  []scoring.LineupPlayer `json:"home"`
	Away  []scoring.LineupPlayer `json:"away"`
	Holes []handicap.Hole        `json:"holes"`
}

type scoreOptions struct {
	file    string
	matchID int64
	save    bool
	output  string
}

func newScoreCmd(app *cli) *cobra.Command {
	var o scoreOptions
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a match",
		Long: `Score a match from a JSON file or from the database.

The file holds {"match": {...}, "home": [...], "away": [...], "holes": [...]}, where
each player carries "scores" keyed by hole id. With --match and --save the computed
points are written back to the match.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.score(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "JSON file describing the match ('-' for stdin)")
	f.Int64Var(&o.matchID, "match", 0, "Match id to load from the database")
	f.BoolVar(&o.save, "save", false, "With --match: store the computed points")
	f.StringVarP(&o.output, "output", "o", "table", "Output format: table or json")
	cmd.MarkFlagsMutuallyExclusive("file", "match")
	cmd.MarkFlagsOneRequired("file", "match")
	return cmd
}

func (app *cli) score(cmd *cobra.Command, o scoreOptions) error {
	if err := checkOutput(o.output); err != nil {
		return err
	}
	if o.save && o.matchID == 0 {
		return fmt.Errorf("--save needs --match")
	}

	var result scoring.Result
	if o.file != "" {
		var in scoreInput
		if err := readJSON(o.file, &in); err != nil {
			return err
		}
		result = scoring.Score(in.Match, in.Home, in.Away, in.Holes)
	} else {
		s, err := app.store()
		if err != nil {
			return err
		}
		data, r, err := s.Result(cmd.Context(), s, o.matchID)
		if err != nil {
			return err
		}
		result = r
		if o.save && data.Stale(r) {
			if err := s.SaveResult(cmd.Context(), r); err != nil {
				return err
			}
			app.log.WithField("match_id", o.matchID).Info("Match points saved")
		}
	}

	if o.output == "json" {
		return app.writeJSON(result)
	}
	return printResult(app, result)
}

func printResult(app *cli, r scoring.Result) error {
	status := "in progress"
	if r.Complete {
		status = "complete"
	}
	fmt.Fprintf(app.out, "Match %d (%s): home %d, away %d\n", r.MatchID, status, r.Home.TotalPoints, r.Away.TotalPoints)

	w := tabwriter.NewWriter(app.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIDE\tPLAYER\tHCP\tPOPS\tGROSS\tNET\tPOINTS\tOPPONENT\t")
	for _, side := range []struct {
		name string
		team scoring.TeamResult
	}{{"home", r.Home}, {"away", r.Away}} {
		for _, p := range side.team.Players {
			net := "-"
			if p.Net != nil {
				net = fmt.Sprintf("%g", *p.Net)
			}
			fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%d\t%s\t%d\t%s\t\n",
				side.name, p.Name, p.Handicap, p.Pops, p.Gross, net, p.Points, p.OpponentName)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Bonus: home %d, away %d\n", r.Home.BonusPoint, r.Away.BonusPoint)
	return nil
}
