package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/saocarlos/refribot/flow"
	"github.com/saocarlos/refribot/gemini"
	"github.com/saocarlos/refribot/session"
)

// Manual smoke test: send one line through the completion gateway with the
// real sales prompt and print the reply.
func main() {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY not set")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}

	text := strings.Join(os.Args[1:], " ")
	if text == "" {
		text = "Oi! Quero 2 uva."
	}

	gateway, err := gemini.NewGateway(context.Background(), apiKey, model, flow.SystemPrompt())
	if err != nil {
		log.Fatalf("Failed to create gateway: %v", err)
	}

	history := []session.Message{
		{Role: session.RoleUser, Content: text},
	}

	log.Printf("📤 Sending: %s", text)
	log.Printf("💬 Reply: %s", gateway.Reply(context.Background(), history))
}
