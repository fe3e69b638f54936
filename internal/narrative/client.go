// Package narrative asks Gemini to explain a stored forecast in plain words.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/theirongolddev/demandcast/internal/model"
)

const requestTimeout = 60 * time.Second

var (
	// ErrNoAPIKey indicates no Gemini API key was configured.
	ErrNoAPIKey = errors.New("narrative: no Gemini API key (set GEMINI_API_KEY or gemini.api_key)")
	// ErrEmptyResponse indicates the model returned no text.
	ErrEmptyResponse = errors.New("narrative: empty response from model")
)

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client generates text through the Gemini API.
type Client struct {
	apiKey string
	model  string
}

// NewClient creates a client for the given key and model name.
func NewClient(apiKey, modelName string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash-lite"
	}
	return &Client{apiKey: apiKey, model: modelName}, nil
}

// Model returns the Gemini model name the client uses.
func (c *Client) Model() string { return c.model }

// Generate sends prompt and returns the concatenated text parts of the
// first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return "", fmt.Errorf("narrative: creating client: %w", err)
	}
	defer func() { _ = client.Close() }()

	gm := client.GenerativeModel(c.model)
	gm.SetTemperature(0.4)
	gm.ResponseMIMEType = "application/json"

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("narrative: generating content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// Narrate asks gen to explain rec and parses the reply.
func Narrate(ctx context.Context, gen Generator, rec model.ForecastRecord) (Narrative, error) {
	raw, err := gen.Generate(ctx, BuildPrompt(rec))
	if err != nil {
		return Narrative{}, err
	}
	n, err := Parse(raw)
	if err != nil {
		return Narrative{}, err
	}
	n.ForecastID = rec.ID
	n.GeneratedAt = time.Now().UTC()
	if c, ok := gen.(*Client); ok {
		n.Model = c.Model()
	}
	return n, nil
}
