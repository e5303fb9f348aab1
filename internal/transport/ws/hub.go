package ws

import (
	"encoding/json"
	"log"
	"sync"

	"mlarcade/internal/engine"
)

// MessageType defines the type of WebSocket message. Outgoing game
// notifications reuse the engine's event kinds verbatim.
type MessageType string

// Client action types
const (
	MsgStartGame  MessageType = "start_game"
	MsgAnswer     MessageType = "answer"
	MsgUsePowerUp MessageType = "use_power_up"
	MsgPause      MessageType = "pause"
	MsgResume     MessageType = "resume"
	MsgReset      MessageType = "reset"
	MsgGetState   MessageType = "get_state"
	MsgGetStats   MessageType = "get_stats"
)

// Server reply types (engine event kinds are sent under their own names)
const (
	MsgState MessageType = "state"
	MsgStats MessageType = "stats"
	MsgError MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Session is one connected player with a dedicated game engine.
type Session struct {
	ID     string
	Engine *engine.Engine
	Send   chan []byte

	subs []engine.Subscription
}

// Hub tracks live sessions. Each session owns its engine, so the hub only
// coordinates registration and session-directed sends.
type Hub struct {
	sessions map[string]*Session

	mu sync.RWMutex

	register   chan *Session
	unregister chan *Session
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		sessions:   make(map[string]*Session),
		register:   make(chan *Session),
		unregister: make(chan *Session),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sess := <-h.register:
			h.mu.Lock()
			h.sessions[sess.ID] = sess
			h.mu.Unlock()
			log.Printf("Session %s connected", sess.ID)

		case sess := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.sessions[sess.ID]; ok && existing == sess {
				delete(h.sessions, sess.ID)
				close(sess.Send)
				log.Printf("Session %s disconnected", sess.ID)
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a session
func (h *Hub) Register(sess *Session) {
	h.register <- sess
}

// Unregister removes a session
func (h *Hub) Unregister(sess *Session) {
	h.unregister <- sess
}

// SessionCount reports the number of live sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// send queues an envelope on the session, dropping it if the buffer is full.
func (sess *Session) send(msgType MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Session %s: cannot marshal %s payload: %v", sess.ID, msgType, err)
		return
	}
	envelope, _ := json.Marshal(&Message{Type: msgType, Payload: data})
	select {
	case sess.Send <- envelope:
	default:
		// Drop message if buffer full
	}
}

// forwardEvents subscribes the session to every engine event kind so the
// client sees the same notifications a local UI would.
func (sess *Session) forwardEvents() {
	for _, kind := range engine.EventKinds {
		kind := kind
		sub := sess.Engine.On(kind, func(ev engine.Event) {
			sess.send(MessageType(kind), ev)
		})
		sess.subs = append(sess.subs, sub)
	}
}

func (sess *Session) dropSubscriptions() {
	for i, kind := range engine.EventKinds {
		if i < len(sess.subs) {
			sess.Engine.Off(kind, sess.subs[i])
		}
	}
	sess.subs = nil
}
