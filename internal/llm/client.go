// Package llm wraps the Groq chat-completion API (served over the
// OpenAI-compatible surface) behind a small client interface. The assistant
// is cosmetic: every caller must treat a failure or timeout as "no AI reply"
// and fall back to the rule-based composer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alshifa-health/hms-platform/internal/doctors"
)

// Client generates a free-form assistant reply for a patient message.
type Client interface {
	Reply(ctx context.Context, message string, roster []doctors.Summary) (string, error)
}

const systemPromptTemplate = `You are a helpful medical assistant chatbot for a healthcare management system. Your role is to:
1. Help patients book appointments with doctors
2. Answer medical questions (with appropriate disclaimers)
3. Provide general information about the healthcare system

Available doctors: %s

When a patient asks medical questions:
- Provide helpful but general guidance
- Always recommend booking an appointment for proper medical evaluation
- Include a disclaimer that this is not a substitute for professional medical advice

Respond in a friendly, professional, and concise manner, in the same language the patient wrote in.`

// GroqClient calls Groq's OpenAI-compatible chat completion endpoint.
type GroqClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewGroqClient constructs a Groq-backed assistant client. Returns nil when
// no API key is configured; callers treat a nil client as "assistant off".
func NewGroqClient(apiKey, baseURL, model string, timeout time.Duration) *GroqClient {
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &GroqClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

// Reply sends the patient message with the doctor roster as context. The
// call is bounded by the configured timeout regardless of the caller's
// context deadline.
func (c *GroqClient) Reply(ctx context.Context, message string, roster []doctors.Summary) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("llm: client not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPromptTemplate, rosterContext(roster))},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func rosterContext(roster []doctors.Summary) string {
	if len(roster) == 0 {
		return "Various specialists"
	}
	names := make([]string, 0, len(roster))
	for _, d := range roster {
		if d.Specialty != "" {
			names = append(names, d.Name+" ("+d.Specialty+")")
			continue
		}
		names = append(names, d.Name)
	}
	return strings.Join(names, ", ")
}
