package ai

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"ratehousing_backend/internal/model"
	"ratehousing_backend/pkg/config"
)

// Message is one turn of the smart-match conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client wraps an OpenAI-compatible chat endpoint. Calls are synchronous
// on the request path, with no retries.
type Client struct {
	llm llms.Model
}

func NewClient(cfg config.AIConfig) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		// langchaingo requires a token even for keyless local endpoints
		apiKey = "placeholder"
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, err
	}

	return &Client{llm: llm}, nil
}

// GenerateSummary produces a normalized summary of a listing's reviews.
// Only an outright LLM failure returns an error; unparseable completions
// degrade through the normalizer chain.
func (c *Client) GenerateSummary(ctx context.Context, listing model.Listing, reviews []model.Review) (Summary, error) {
	raw, err := llms.GenerateFromSinglePrompt(ctx, c.llm, BuildSummaryPrompt(listing, reviews))
	if err != nil {
		return Summary{}, err
	}
	return ParseSummary(raw), nil
}

// SmartMatch runs the conversational filter extraction. The history may or
// may not already end with the latest user input.
func (c *Client) SmartMatch(ctx context.Context, userInput string, history []Message) (SmartMatch, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, SmartMatchSystemPrompt()),
	}
	for _, m := range history {
		role := llms.ChatMessageTypeHuman
		if m.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, m.Content))
	}
	if len(history) == 0 || history[len(history)-1].Content != userInput {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userInput))
	}

	resp, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return SmartMatch{}, err
	}
	if len(resp.Choices) == 0 {
		return SmartMatch{}, errors.New("empty completion")
	}

	return ParseSmartMatch(resp.Choices[0].Content), nil
}
