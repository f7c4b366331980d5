package server

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/saocarlos/refribot/config"
	"github.com/saocarlos/refribot/flow"
	"github.com/saocarlos/refribot/session"
)

// Webhook serves the WhatsApp message-receipt endpoint. Twilio posts one
// form-encoded request per inbound message and expects a TwiML reply; every
// non-crashing path answers 200 since delivery is best-effort anyway.
type Webhook struct {
	httpServer *http.Server
	engine     *flow.Engine
	store      *session.Store
	config     *config.Config
}

func NewWebhook(cfg *config.Config, engine *flow.Engine, store *session.Store) *Webhook {
	s := &Webhook{
		engine: engine,
		store:  store,
		config: cfg,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/whatsapp", s.handleWhatsApp)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // turns block on the completion call
	}

	return s
}

// Start begins listening for webhook requests
func (s *Webhook) Start() error {
	log.Printf("🚀 Webhook server starting on port %d", s.config.Port)
	log.Printf("📡 WhatsApp endpoint: http://localhost:%d/whatsapp", s.config.Port)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Webhook) Shutdown(ctx context.Context) error {
	log.Println("🛑 Shutting down webhook server...")
	return s.httpServer.Shutdown(ctx)
}

func (s *Webhook) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Printf("⚠️ Failed to parse webhook form: %v", err)
		writeTwiML(w, "")
		return
	}

	from := r.FormValue("From")
	body := strings.TrimSpace(r.FormValue("Body"))
	if from == "" {
		writeTwiML(w, "")
		return
	}

	log.Printf("📥 Message from %s: %s", from, body)

	reply := s.engine.HandleMessage(r.Context(), from, body)
	writeTwiML(w, reply)
}

// writeTwiML renders the chat-markup reply payload Twilio expects.
func writeTwiML(w http.ResponseWriter, reply string) {
	var body string
	if reply != "" {
		var escaped bytes.Buffer
		_ = xml.EscapeText(&escaped, []byte(reply))
		body = fmt.Sprintf("\n\t<Message>%s</Message>", escaped.String())
	}

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<Response>%s
</Response>`, body)
}

func (s *Webhook) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","server":"webhook","sessions":%d}`, s.store.Count())
}
