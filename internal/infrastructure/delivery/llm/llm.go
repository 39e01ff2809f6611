// Package llm answers free-form HR questions for the chatbot.
package llm

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel   = openai.GPT3Dot5Turbo
	requestTimeout = 20 * time.Second
	maxTokens      = 300

	systemPrompt = "You are a helpful HR chatbot for an Employee Management System. " +
		"Provide concise answers to questions about HR policies, leave and general company information."
)

// Config selects the endpoint and model. BaseURL may point at any
// OpenAI-compatible server.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIClient asks a chat-completions endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(cfg Config) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(oc), model: model}
}

func (c *OpenAIClient) Ask(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

var cannedReplies = []string{
	"I am an HR chatbot here to help with your questions.",
	"Please refer to the company's official policy document for more details.",
	"That is a good question! Please reach out to HR for a definitive answer.",
	"I can help with common questions about leave, payroll and tasks.",
}

// Canned replies from a fixed list when no LLM is configured. The same
// question always gets the same reply.
type Canned struct{}

func (Canned) Ask(_ context.Context, prompt string) (string, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(prompt))))
	return cannedReplies[h.Sum32()%uint32(len(cannedReplies))], nil
}
