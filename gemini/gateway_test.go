package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/saocarlos/refribot/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"google.golang.org/genai"
)

func TestReplyReturnsCompletionText(t *testing.T) {
	g := &Gateway{
		model: "test-model",
		generate: func(ctx context.Context, contents []*genai.Content) (string, error) {
			return "Olá! Qual sabor você gostaria? 😊", nil
		},
	}

	reply := g.Reply(context.Background(), []session.Message{
		{Role: session.RoleUser, Content: "oi"},
	})
	assert.Equal(t, "Olá! Qual sabor você gostaria? 😊", reply)
}

func TestReplyFailSoft(t *testing.T) {
	// Any failure of the underlying call degrades to the fixed apology.
	g := &Gateway{
		model: "test-model",
		generate: func(ctx context.Context, contents []*genai.Content) (string, error) {
			return "", errors.New("rate limited")
		},
	}

	reply := g.Reply(context.Background(), []session.Message{
		{Role: session.RoleUser, Content: "oi"},
	})
	assert.Equal(t, Apology, reply)
}

func TestBuildContents(t *testing.T) {
	contents := buildContents([]session.Message{
		{Role: session.RoleUser, Content: "quero 2 uva"},
		{Role: session.RoleAssistant, Content: "Quantas unidades?"},
		{Role: session.RoleUser, Content: "2"},
	})

	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, string(genai.RoleUser), contents[2].Role)
	assert.Equal(t, "quero 2 uva", contents[0].Parts[0].Text)
}
