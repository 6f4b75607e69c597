package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// DefaultModelName is the default Gemini model used for narrative insights.
const DefaultModelName = "gemini-2.5-flash"

// defaultCallTimeout bounds a single outbound reasoning call.
const defaultCallTimeout = 60 * time.Second

// maxOutputTokens bounds the response budget; the schema fits comfortably.
const maxOutputTokens = 700

// Generator issues one bounded reasoning call over a grounded fact payload
// and returns the raw response text.
type Generator interface {
	Generate(ctx context.Context, groundedJSON string) (string, error)
}

// GeminiGenerator is the concrete Generator backed by the Gemini API. The
// call is pinned to a low temperature and a strict-JSON response mode so the
// output is reproducible and schema-shaped.
type GeminiGenerator struct {
	model   string
	timeout time.Duration
}

// NewGeminiGenerator creates a generator for the given model name; an empty
// name selects DefaultModelName.
func NewGeminiGenerator(model string) *GeminiGenerator {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiGenerator{model: model, timeout: defaultCallTimeout}
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, groundedJSON string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("Generate: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: groundedJSON},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: insightsSystemPrompt}},
		},
		Temperature:      genai.Ptr[float32](0.2),
		MaxOutputTokens:  maxOutputTokens,
		ResponseMIMEType: "application/json",
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", classifyUpstreamError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", &ParseError{Reason: "empty response from model"}
	}
	return text, nil
}

// classifyUpstreamError maps a transport failure onto the typed taxonomy so
// the API boundary can surface distinguishable status codes.
func classifyUpstreamError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return fmt.Errorf("%w: %s", ErrUpstreamUnauthorized, apiErr.Message)
		case apiErr.Code == 429:
			return fmt.Errorf("%w: %s", ErrUpstreamRateLimited, apiErr.Message)
		case apiErr.Code >= 500:
			return fmt.Errorf("%w: %s", ErrUpstreamServer, apiErr.Message)
		case apiErr.Code >= 400:
			return fmt.Errorf("%w: %s", ErrUpstreamBadRequest, apiErr.Message)
		}
	}
	return fmt.Errorf("%w: %v", ErrUpstreamServer, err)
}
