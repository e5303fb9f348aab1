package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mlarcade/internal/engine"
	"mlarcade/internal/model"
	"mlarcade/internal/questionbank"
	"mlarcade/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler upgrades connections and gives each one its own game engine.
type Handler struct {
	hub    *Hub
	bank   *questionbank.Bank
	store  store.Store
	cfg    engine.Config
	sounds engine.SoundBank
}

// NewHandler creates a new WebSocket handler. sounds may be nil when the
// host has no audio device.
func NewHandler(hub *Hub, bank *questionbank.Bank, st store.Store, cfg engine.Config, sounds engine.SoundBank) *Handler {
	return &Handler{hub: hub, bank: bank, store: st, cfg: cfg, sounds: sounds}
}

// ArcadeWS handles GET /v1/arcade
func (h *Handler) ArcadeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	eng := engine.New(h.bank, h.store, h.cfg)
	if h.sounds != nil {
		eng.SetSounds(h.sounds)
	}

	sess := &Session{
		ID:     uuid.NewString(),
		Engine: eng,
		Send:   make(chan []byte, 256),
	}
	sess.forwardEvents()

	h.hub.Register(sess)

	go h.writePump(wsConn, sess)
	go h.readPump(wsConn, sess)
}

// startGamePayload, answerPayload and powerUpPayload are the client action
// shapes.
type startGamePayload struct {
	Level int `json:"level"`
}

type answerPayload struct {
	Answer model.Answer `json:"answer"`
}

type powerUpPayload struct {
	ID string `json:"id"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (h *Handler) readPump(wsConn *websocket.Conn, sess *Session) {
	defer func() {
		sess.dropSubscriptions()
		sess.Engine.ResetGame()
		h.hub.Unregister(sess)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.send(MsgError, errorPayload{Message: "malformed message"})
			continue
		}
		h.dispatch(sess, &msg)
	}
}

func (h *Handler) dispatch(sess *Session, msg *Message) {
	switch msg.Type {
	case MsgStartGame:
		var p startGamePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			sess.send(MsgError, errorPayload{Message: "malformed start_game payload"})
			return
		}
		if p.Level == 0 {
			p.Level = 1
		}
		sess.Engine.StartGame(p.Level)

	case MsgAnswer:
		var p answerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			sess.send(MsgError, errorPayload{Message: "malformed answer payload"})
			return
		}
		sess.Engine.AnswerQuestion(p.Answer)

	case MsgUsePowerUp:
		var p powerUpPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			sess.send(MsgError, errorPayload{Message: "malformed use_power_up payload"})
			return
		}
		if !sess.Engine.UsePowerUp(p.ID) {
			sess.send(MsgError, errorPayload{Message: "power-up not available"})
		}

	case MsgPause:
		sess.Engine.PauseGame()

	case MsgResume:
		sess.Engine.ResumeGame()

	case MsgReset:
		sess.Engine.ResetGame()

	case MsgGetState:
		sess.send(MsgState, sess.Engine.Snapshot())

	case MsgGetStats:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		stats, err := sess.Engine.Stats(ctx)
		cancel()
		if err != nil {
			sess.send(MsgError, errorPayload{Message: "stats unavailable"})
			return
		}
		sess.send(MsgStats, stats)

	default:
		sess.send(MsgError, errorPayload{Message: "unknown message type"})
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, sess *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-sess.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
