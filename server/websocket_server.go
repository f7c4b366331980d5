package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/saocarlos/refribot/config"
	"github.com/saocarlos/refribot/flow"
	"github.com/saocarlos/refribot/messages"
	"github.com/saocarlos/refribot/session"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Chat is the dev WebSocket transport: a browser console can talk the same
// order flow the WhatsApp webhook drives, under a synthetic customer id.
type Chat struct {
	httpServer *http.Server
	upgrader   websocket.Upgrader
	engine     *flow.Engine
	store      *session.Store
	config     *config.Config
}

func NewChat(cfg *config.Config, engine *flow.Engine, store *session.Store) *Chat {
	s := &Chat{
		engine: engine,
		store:  store,
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				for _, allowed := range cfg.AllowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	// Standalone websocket mode uses the main port
	port := cfg.WSPort
	if cfg.ServerType == "websocket" {
		port = cfg.Port
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
		// No ReadTimeout/WriteTimeout — they interfere with long-lived
		// WebSocket connections.
	}

	return s
}

// Start begins listening for connections
func (s *Chat) Start() error {
	log.Printf("🚀 Dev chat server starting on %s", s.httpServer.Addr)
	log.Printf("📡 Chat endpoint: ws://localhost%s/ws", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Chat) Shutdown(ctx context.Context) error {
	log.Println("🛑 Shutting down dev chat server...")
	return s.httpServer.Shutdown(ctx)
}

func (s *Chat) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// One synthetic customer per connection
	customerID := "ws:" + uuid.New().String()
	log.Printf("✅ New chat connection: %s", customerID)

	s.send(conn, messages.NewStatusMessage(customerID, "connected", "Session established"))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg messages.ClientMessage
		if err := sonic.Unmarshal(raw, &msg); err != nil {
			s.send(conn, messages.NewErrorMessage(customerID, messages.ErrCodeInvalidMessage, err.Error()))
			continue
		}

		if msg.Type != messages.TypeText {
			s.send(conn, messages.NewErrorMessage(customerID, messages.ErrCodeInvalidMessage, "unsupported message type"))
			continue
		}

		var payload messages.TextPayload
		if err := sonic.Unmarshal(msg.Payload, &payload); err != nil {
			s.send(conn, messages.NewErrorMessage(customerID, messages.ErrCodeInvalidMessage, err.Error()))
			continue
		}

		reply := s.engine.HandleMessage(r.Context(), customerID, payload.Text)
		s.send(conn, messages.NewTextMessage(customerID, reply))
	}

	// Drop the synthetic session with the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.store.Remove(ctx, customerID)
	log.Printf("🔌 Chat connection closed: %s", customerID)
}

func (s *Chat) send(conn *websocket.Conn, msg *messages.ServerMessage) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		log.Printf("⚠️ Failed to encode message: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("⚠️ Failed to write message: %v", err)
	}
}

func (s *Chat) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","server":"chat","sessions":%d}`, s.store.Count())
}
