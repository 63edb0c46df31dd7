package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trentd187/golf-league-matchups/internal/pairing"
	"github.com/trentd187/golf-league-matchups/internal/store"
)

// pairingsInput is the file form of a pairing request.
type pairingsInput struct {
	Teams   []pairing.Team          `json:"teams"`
	History map[pairing.PairKey]int `json:"history"`
}

type pairingsOptions struct {
	file        string
	leagueID    int64
	teamIDs     []int64
	throughWeek int
	seed        int64
	reshuffle   bool
	output      string
}

func newPairingsCmd(app *cli) *cobra.Command {
	var o pairingsOptions
	cmd := &cobra.Command{
		Use:   "pairings",
		Short: "Propose a week's pairings",
		Long: `Propose a week's pairings from a JSON file or from a league in the database.

The file holds {"teams": [{"id": 1, "name": "..."}], "history": {"1-2": 1}}.
Without --seed one is drawn from the clock and printed, so the proposal can be
reproduced or reshuffled later.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				o.seed = app.clock.Now().UnixMilli()
			}
			return app.pairings(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "JSON file with teams and history ('-' for stdin)")
	f.Int64Var(&o.leagueID, "league", 0, "League id to load teams and history from")
	f.Int64SliceVar(&o.teamIDs, "teams", nil, "With --league: only these team ids")
	f.IntVar(&o.throughWeek, "through-week", 0, "With --league: only count history up to this week")
	f.Int64Var(&o.seed, "seed", 0, "Seed for the random tie-breaks")
	f.BoolVar(&o.reshuffle, "reshuffle", false, "Propose with the seed after --seed")
	f.StringVarP(&o.output, "output", "o", "table", "Output format: table or json")
	cmd.MarkFlagsMutuallyExclusive("file", "league")
	cmd.MarkFlagsOneRequired("file", "league")
	return cmd
}

func (app *cli) pairings(cmd *cobra.Command, o pairingsOptions) error {
	if err := checkOutput(o.output); err != nil {
		return err
	}

	var (
		teams   []pairing.Team
		history pairing.Lookup
	)
	if o.file != "" {
		var in pairingsInput
		if err := readJSON(o.file, &in); err != nil {
			return err
		}
		teams, history = in.Teams, pairing.HistoryFromCounts(in.History)
	} else {
		s, err := app.store()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if teams, err = s.SelectTeams(ctx, o.leagueID, o.teamIDs); err != nil {
			return err
		}
		h, err := s.History(ctx, o.leagueID, store.HistoryFilter{ThroughWeek: o.throughWeek})
		if err != nil {
			app.log.WithError(err).Warn("Matchup history unavailable, pairing without it")
			histErr := err
			history = pairing.LookupFunc(func(int64, int64) (int, error) { return 0, histErr })
		} else {
			history = h
		}
	}

	var set pairing.Set
	if o.reshuffle {
		set = pairing.Reshuffle(teams, history, o.seed)
	} else {
		set = pairing.Generate(teams, history, o.seed)
	}

	if o.output == "json" {
		return app.writeJSON(set)
	}
	return printPairings(app, set)
}

func printPairings(app *cli, set pairing.Set) error {
	fmt.Fprintf(app.out, "Seed %d, method %s, %d repeat matchup(s)\n", set.Seed, set.Method, set.TotalScore)
	if set.UsedFallback {
		fmt.Fprintln(app.out, "History was unavailable: these pairings ignore past matchups.")
	}
	if set.Reason == pairing.ReasonInsufficientTeams {
		fmt.Fprintln(app.out, "Not enough teams to pair.")
		return nil
	}

	w := tabwriter.NewWriter(app.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HOME\tAWAY\tPLAYED BEFORE\t")
	for _, p := range set.Pairings {
		mark := ""
		if p.IsDuplicate {
			mark = " (repeat)"
		}
		fmt.Fprintf(w, "%s\t%s\t%d%s\t\n", p.Team1.Name, p.Team2.Name, p.PreviousMatchups, mark)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if set.Bye != nil {
		fmt.Fprintf(app.out, "Bye: %s\n", set.Bye.Name)
	}
	return nil
}
