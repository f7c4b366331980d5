package gemini

import (
	"context"
	"fmt"
	"log"

	"github.com/saocarlos/refribot/session"

	"google.golang.org/genai"
)

// Apology is the fixed reply returned whenever the completion call fails.
// A broken completion call must never break the order flow, so the gateway
// degrades to this string instead of surfacing an error.
const Apology = "Desculpe, não consegui processar sua solicitação no momento. Tente novamente."

type generateFunc func(ctx context.Context, contents []*genai.Content) (string, error)

// Gateway is the boundary to the Gemini text-completion API. It turns a
// conversation transcript into a single reply string and never returns an
// error to its caller.
type Gateway struct {
	model    string
	generate generateFunc
}

// NewGateway creates a Gateway backed by the Gemini API. The system prompt
// carries the whole sales script and is attached to every request.
func NewGateway(ctx context.Context, apiKey, model, systemPrompt string) (*Gateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		},
	}

	g := &Gateway{model: model}
	g.generate = func(ctx context.Context, contents []*genai.Content) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			return "", err
		}
		text := resp.Text()
		if text == "" {
			return "", fmt.Errorf("empty completion response")
		}
		return text, nil
	}

	log.Printf("✅ Gemini gateway ready (%s)", model)
	return g, nil
}

// Reply generates the assistant's next line from the transcript, which must
// already end with the latest user message. On any failure of the
// underlying call the fixed apology is returned instead.
func (g *Gateway) Reply(ctx context.Context, history []session.Message) string {
	text, err := g.generate(ctx, buildContents(history))
	if err != nil {
		log.Printf("❌ Completion call failed: %v", err)
		return Apology
	}
	return text
}

func buildContents(history []session.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := genai.Role(genai.RoleUser)
		if msg.Role == session.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}
