package mux

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"pokerroom-server/pkg/room"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10

// getRoomWS upgrades the connection and streams redacted room state to the
// player. The first frame is the current snapshot; each applied event
// follows as its own envelope. Closing the socket starts the player's
// disconnect grace period.
func (m *Mux) getRoomWS() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		coordinator := coordinatorFromContext(r)
		playerID := playerFromContext(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Error("could not upgrade connection")
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		client, err := coordinator.Subscribe(r.Context(), playerID)
		if err != nil {
			_ = conn.Close()
			return
		}

		defer func() {
			coordinator.Unsubscribe(client)
			_ = conn.Close()
		}()

		go m.webSocketWriteLoop(conn, client)
		m.webSocketReadLoop(conn, playerID)
	}
}

func (m *Mux) webSocketWriteLoop(conn *websocket.Conn, client *room.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case env, ok := <-client.Receive():
			if !ok {
				// detached: either unsubscribed or fell too far behind
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "detached"))
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				logrus.WithError(err).WithField("player", client.PlayerID).Error("could not write message")
				return
			}
		}
	}
}

// webSocketReadLoop drains the connection until it closes. The push
// channel is one-way; actions arrive over the regular endpoints.
func (m *Mux) webSocketReadLoop(conn *websocket.Conn, playerID string) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).WithField("player", playerID).Debug("websocket closed unexpectedly")
			}

			return
		}
	}
}
