package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// ChannelPrefix namespaces the Redis pub/sub channels, one per match.
const ChannelPrefix = "golfleague:match:"

// Channel returns the Redis channel for a match.
func Channel(matchID int64) string {
	return ChannelPrefix + strconv.FormatInt(matchID, 10)
}

// envelope is what travels through Redis.
type envelope struct {
	MatchID int64           `json:"match_id"`
	Origin  string          `json:"origin"`
	SentAt  time.Time       `json:"sent_at"`
	Data    json.RawMessage `json:"data"`
}

// publisher is the part of a Redis client the Relay publishes through.
type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Relay publishes match updates to Redis and feeds updates from every instance into
// the local Hub. If Redis is unavailable the circuit breaker opens and updates are
// delivered to local clients only until it recovers.
type Relay struct {
	pub    publisher
	rdb    *redis.Client
	hub    *Hub
	log    logrus.FieldLogger
	clock  clockwork.Clock
	cb     *gobreaker.CircuitBreaker
	origin string
}

var _ Broadcaster = (*Relay)(nil)

// NewRelay relays through rdb into hub.
func NewRelay(rdb *redis.Client, hub *Hub, log logrus.FieldLogger, clock clockwork.Clock) *Relay {
	r := newRelay(rdb, hub, log, clock)
	r.rdb = rdb
	return r
}

func newRelay(pub publisher, hub *Hub, log logrus.FieldLogger, clock clockwork.Clock) *Relay {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	r := &Relay{
		pub:    pub,
		hub:    hub,
		log:    log,
		clock:  clock,
		origin: uuid.NewString(),
	}
	r.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "live-relay",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("Live relay circuit breaker state changed")
		},
	})
	return r
}

// BroadcastMatch publishes data for matchID. Delivery to local clients happens when the
// message comes back through the subscription. When publishing fails the update goes
// straight to the local Hub and the error is returned for logging.
func (r *Relay) BroadcastMatch(ctx context.Context, matchID int64, data []byte) error {
	payload, err := json.Marshal(envelope{
		MatchID: matchID,
		Origin:  r.origin,
		SentAt:  r.clock.Now().UTC(),
		Data:    data,
	})
	if err != nil {
		return fmt.Errorf("encode relay message: %w", err)
	}

	_, err = r.cb.Execute(func() (any, error) {
		return nil, r.pub.Publish(ctx, Channel(matchID), payload).Err()
	})
	if err != nil {
		if herr := r.hub.BroadcastMatch(ctx, matchID, data); herr != nil {
			return fmt.Errorf("publish match %d: %w (local delivery: %v)", matchID, err, herr)
		}
		return fmt.Errorf("publish match %d: %w", matchID, err)
	}
	return nil
}

// Run subscribes to every match channel and hands messages to the Hub until ctx ends.
func (r *Relay) Run(ctx context.Context) error {
	if r.rdb == nil {
		return fmt.Errorf("relay has no redis client")
	}
	sub := r.rdb.PSubscribe(ctx, ChannelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s*: %w", ChannelPrefix, err)
	}
	r.log.WithField("pattern", ChannelPrefix+"*").Info("Live relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(ctx, msg)
		}
	}
}

func (r *Relay) handle(ctx context.Context, msg *redis.Message) {
	var env envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		r.log.WithError(err).WithField("channel", msg.Channel).Warn("Dropping malformed relay message")
		return
	}
	if want := strings.TrimPrefix(msg.Channel, ChannelPrefix); want != strconv.FormatInt(env.MatchID, 10) {
		r.log.WithField("channel", msg.Channel).Warn("Dropping relay message for the wrong channel")
		return
	}
	if err := r.hub.BroadcastMatch(ctx, env.MatchID, env.Data); err != nil {
		r.log.WithError(err).WithField("match_id", env.MatchID).Debug("Relay message not delivered")
		return
	}
	r.log.WithFields(logrus.Fields{
		"match_id": env.MatchID,
		"origin":   env.Origin,
		"lag_ms":   r.clock.Since(env.SentAt).Milliseconds(),
	}).Debug("Relayed match update")
}
