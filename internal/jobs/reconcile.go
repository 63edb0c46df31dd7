// Package jobs runs the service's scheduled background work.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/trentd187/golf-league-matchups/internal/models"
	"github.com/trentd187/golf-league-matchups/internal/store"
	"github.com/trentd187/golf-league-matchups/internal/websocket"
)

// DefaultSchedule rescoring runs on when none is configured.
const DefaultSchedule = "@every 1h"

// Summary reports one reconciliation pass.
type Summary struct {
	Leagues int
	Matches int
	Updated int
	Failed  int
}

// Reconciler rescores every match of the active leagues and fixes saved point totals
// that no longer match the scores, for example after a course's hole handicaps were
// corrected. Watchers of a fixed match get the new result.
//
// Holes are always read from the store, never from a cache, so a corrected course is
// picked up on the next pass.
type Reconciler struct {
	store *store.Store
	live  websocket.Broadcaster // optional
	log   logrus.FieldLogger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewReconciler returns a stopped Reconciler. live may be nil.
func NewReconciler(s *store.Store, live websocket.Broadcaster, log logrus.FieldLogger) *Reconciler {
	return &Reconciler{store: s, live: live, log: log}
}

// Start schedules RunOnce. schedule is a cron spec or a descriptor such as "@every 1h".
// Runs never overlap: a tick that arrives while the last pass is still going is skipped.
func (r *Reconciler) Start(schedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return fmt.Errorf("reconciler is already running")
	}

	logger := cron.PrintfLogger(r.log)
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := r.RunOnce(ctx); err != nil {
			r.log.WithError(err).Error("Match reconciliation failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule reconciler %q: %w", schedule, err)
	}

	c.Start()
	r.cron = c
	r.running = true
	r.log.WithField("schedule", schedule).Info("Match reconciler started")
	return nil
}

// Stop halts scheduling and waits for a pass in progress to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	<-r.cron.Stop().Done()
	r.running = false
	r.log.Info("Match reconciler stopped")
}

// RunOnce performs one pass. A match that fails to load is counted and skipped.
func (r *Reconciler) RunOnce(ctx context.Context) (Summary, error) {
	var sum Summary
	leagues, err := r.store.LeagueIDs(ctx, models.LeagueStatusActive)
	if err != nil {
		return sum, err
	}
	sum.Leagues = len(leagues)

	for _, leagueID := range leagues {
		ids, err := r.store.MatchIDs(ctx, leagueID)
		if err != nil {
			return sum, err
		}
		for _, id := range ids {
			sum.Matches++
			if err := r.reconcile(ctx, id, &sum); err != nil {
				sum.Failed++
				r.log.WithError(err).WithField("match_id", id).Warn("Could not reconcile match")
			}
		}
	}

	r.log.WithFields(logrus.Fields{
		"leagues": sum.Leagues,
		"matches": sum.Matches,
		"updated": sum.Updated,
		"failed":  sum.Failed,
	}).Info("Match reconciliation finished")
	return sum, ctx.Err()
}

func (r *Reconciler) reconcile(ctx context.Context, matchID int64, sum *Summary) error {
	data, result, err := r.store.Result(ctx, r.store, matchID)
	if err != nil {
		return err
	}
	if !data.Stale(result) {
		return nil
	}
	if err := r.store.SaveResult(ctx, result); err != nil {
		return err
	}
	sum.Updated++

	if r.live != nil {
		msg, err := websocket.EncodeResult(result)
		if err != nil {
			return err
		}
		if err := r.live.BroadcastMatch(ctx, matchID, msg); err != nil {
			r.log.WithError(err).WithField("match_id", matchID).Warn("Could not push reconciled result")
		}
	}
	return nil
}
