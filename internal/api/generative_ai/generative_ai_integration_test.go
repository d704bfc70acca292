//go:build integration

package generativeAI

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClient_Generate_Integration(t *testing.T) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: GOOGLE_GEMINI_API_KEY not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewGeminiClient(ctx, apiKey, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, client.Model())

	text, err := client.Generate(ctx, "What is the capital of Portugal? Answer with one word.")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(text), "lisbon")
}

func TestOpenAIClient_Generate_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewOpenAIClient(apiKey, os.Getenv("OPENAI_BASE_URL"), os.Getenv("OPENAI_MODEL"), nil)
	require.NoError(t, err)

	text, err := client.Generate(ctx, "What is the capital of Portugal? Answer with one word.")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(text), "lisbon")
}
