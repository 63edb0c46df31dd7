package handlers

import (
	"context"
	"time"

	fws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/golf-league-matchups/internal/websocket"
)

const localMatchID = "matchID"

// writeWait bounds how long one message may take to reach a watcher.
const writeWait = 10 * time.Second

// MatchSocketUpgrade guards GET /ws/matches/:matchID. It only lets WebSocket upgrade
// requests for an existing match through to MatchSocket.
func MatchSocketUpgrade(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !fws.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
				"error": "websocket upgrade required",
			})
		}
		matchID, err := idParam(c, "matchID")
		if err != nil {
			return err
		}
		if _, err := d.Store.Match(c.UserContext(), matchID); err != nil {
			return storeError(c, d, err, "load match")
		}
		c.Locals(localMatchID, matchID)
		return c.Next()
	}
}

// MatchSocket streams a match's result to one watcher: the current result on connect,
// then every recomputed result. Watchers only read; anything they send is ignored.
func MatchSocket(d *Deps) fiber.Handler {
	return fws.New(func(conn *fws.Conn) {
		matchID, _ := conn.Locals(localMatchID).(int64)
		log := d.Log.WithField("match_id", matchID)

		client := websocket.NewClient(matchID)
		if !d.Hub.Register(client) {
			return
		}
		defer d.Hub.Unregister(client)

		// The read loop notices the watcher going away.
		go func() {
			defer d.Hub.Unregister(client)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		if msg, err := snapshot(d, matchID); err != nil {
			log.WithError(err).Warn("Could not send current result")
		} else if err := write(conn, msg); err != nil {
			return
		}

		for msg := range client.Send {
			if err := write(conn, msg); err != nil {
				log.WithError(err).Debug("Watcher write failed")
				return
			}
		}
		log.WithField("watchers", d.Hub.Count(matchID)).Debug("Watcher disconnected")
	})
}

func snapshot(d *Deps, matchID int64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, result, err := d.Store.Result(ctx, d.Holes, matchID)
	if err != nil {
		return nil, err
	}
	return websocket.EncodeResult(result)
}

func write(conn *fws.Conn, msg []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(fws.TextMessage, msg)
}

