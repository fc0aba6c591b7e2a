package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are the assistant of a campus placement portal. " +
	"Answer briefly and only about placement drives, internships, resumes and interviews. " +
	"Students apply on the \"Apply for Drive\" page and upload resumes on the \"Upload Resume\" page."

// OpenAIResponder asks an OpenAI-compatible chat completion endpoint.
type OpenAIResponder struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIResponder builds a client; an empty baseURL keeps the OpenAI default.
func NewOpenAIResponder(apiKey, baseURL, model string, timeout time.Duration) *OpenAIResponder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIResponder{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

// Reply sends message with the system prompt and returns the trimmed first choice.
func (o *OpenAIResponder) Reply(ctx context.Context, message string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: no choices returned")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.New("chat completion: empty reply")
	}
	return reply, nil
}
