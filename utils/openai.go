package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

const assistSystemPrompt = "You are a helpful assistant for an internal Q&A tool. " +
	"Use ONLY the provided context blocks to answer. If the context is insufficient, " +
	"say you don't have enough information. Be concise (max ~150 words)."

// OpenAIGenerator produces grounded answers through the OpenAI chat API.
type OpenAIGenerator struct {
	APIKey string
	Model  string
	Client *http.Client
}

// NewOpenAIGenerator creates a generator; model defaults upstream in config.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate answers the question using the given context blocks.
func (g *OpenAIGenerator) Generate(ctx context.Context, question string, contextBlocks []string) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("openai: missing api key")
	}

	messages := []chatMessage{{Role: "system", Content: assistSystemPrompt}}
	if len(contextBlocks) > 0 {
		var b strings.Builder
		b.WriteString("Context blocks:\n\n")
		for i, block := range contextBlocks {
			fmt.Fprintf(&b, "[%d]\n%s\n\n", i+1, block)
		}
		messages = append(messages, chatMessage{Role: "system", Content: b.String()})
	}
	messages = append(messages, chatMessage{Role: "user", Content: question})

	body, err := json.Marshal(chatRequest{
		Model:       g.Model,
		Messages:    messages,
		Temperature: 0.2,
		MaxTokens:   500,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openai: status %d: %s", resp.StatusCode, string(payload))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return out.Choices[0].Message.Content, nil
}
