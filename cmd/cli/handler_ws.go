package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/modes"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	eventChangeMode   = "change_mode"
	eventModesUpdated = "modes_updated"
	eventError        = "error"

	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMessage = 4096
)

// wsEnvelope is the frame exchanged on the mode channel
type wsEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type wsOutgoing struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// checkOrigin accepts same-origin requests and the configured CORS origins
func (rm *RouteManager) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	return rm.originAllowed(origin)
}

// modesWebsocketHandler subscribes a screen to mode updates.
// The connection receives the current set first, then one frame per change.
func (rm *RouteManager) modesWebsocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := rm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rm.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := rm.broadcaster.Subscribe()
	defer rm.broadcaster.Unsubscribe(sub.ID)

	log := rm.logger.With(zap.String("subscriber_id", sub.ID.String()))
	log.Debug("Mode observer connected")

	// Only this goroutine writes to conn; the reader reports errors back through replies.
	replies := make(chan wsOutgoing, 4)
	done := make(chan struct{})
	go rm.readModeCommands(conn, replies, done, log)

	if err := writeFrame(conn, wsOutgoing{Event: eventModesUpdated, Data: sub.Initial}); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case set, ok := <-sub.C:
			if !ok {
				reason := "mode channel closed"
				if sub.Evicted() {
					reason = "observer fell behind"
				}
				log.Debug("Closing mode observer", zap.String("reason", reason))
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, reason))
				return
			}
			if err := writeFrame(conn, wsOutgoing{Event: eventModesUpdated, Data: set}); err != nil {
				return
			}
		case reply := <-replies:
			if err := writeFrame(conn, reply); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			log.Debug("Mode observer disconnected")
			return
		}
	}
}

// readModeCommands applies change_mode frames until the connection fails
func (rm *RouteManager) readModeCommands(conn *websocket.Conn, replies chan<- wsOutgoing, done chan<- struct{}, log *zap.Logger) {
	defer close(done)

	conn.SetReadLimit(wsMaxMessage)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("Mode observer read failed", zap.Error(err))
			}
			return
		}

		// A frame that does not decode is answered, the session stays open
		var msg wsEnvelope
		if err := json.Unmarshal(data, &msg); err != nil {
			sendReply(replies, eventError, "message must be a JSON envelope")
			continue
		}

		if msg.Event != eventChangeMode {
			sendReply(replies, eventError, "unsupported event "+msg.Event)
			continue
		}

		var req changeModeRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			sendReply(replies, eventError, "change_mode requires a label")
			continue
		}

		if _, err := rm.broadcaster.RequestChange(req.Label); err != nil {
			var unknown *modes.UnknownModeError
			if errors.As(err, &unknown) {
				sendReply(replies, eventError, err.Error())
				continue
			}
			return
		}
	}
}

func sendReply(replies chan<- wsOutgoing, event string, message string) {
	select {
	case replies <- wsOutgoing{Event: event, Data: map[string]string{"message": message}}:
	default:
	}
}

func writeFrame(conn *websocket.Conn, frame wsOutgoing) error {
	if frame.Data == nil && frame.Event == eventModesUpdated {
		frame.Data = []models.ViewMode{}
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(frame)
}
