package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"studyquiz/internal/apierr"
	"studyquiz/internal/logger"
	"studyquiz/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-2.5-flash"

	temperature = 0.3
)

var (
	// ErrEmptyResponse means the model returned no candidates or no text.
	ErrEmptyResponse = errors.New("no content generated")
	// ErrNoJSONArray means the reply did not contain a JSON array.
	ErrNoJSONArray = errors.New("no JSON array found in response")
)

// Client wraps the Gemini client
type Client struct {
	client    *genai.Client
	modelName string
	log       *logger.Logger
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey, modelName string, log *logger.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if log == nil {
		log = logger.Nop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:    client,
		modelName: modelName,
		log:       log.With("component", "GeminiClient"),
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() {
	c.client.Close()
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.modelName
}

// Generate sends one structured-output request and parses the reply into raw
// question objects. It makes a single attempt; ctx bounds the call.
func (c *Client) Generate(ctx context.Context, prompt string, schema *models.Schema) (*models.Generation, error) {
	// GenerativeModel carries per-call settings, so each request gets its own.
	model := c.client.GenerativeModel(c.modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = toGenaiSchema(schema)
	model.SetTemperature(temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apierr.Generation("gemini.generate", fmt.Errorf("generation aborted: %w", ctxErr))
		}
		return nil, apierr.Generation("gemini.generate", fmt.Errorf("failed to generate content: %w", err))
	}

	gen := &models.Generation{Model: c.modelName}
	copyUsage(gen, resp)

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return gen, apierr.Generation("gemini.generate", ErrEmptyResponse)
	}

	items, err := parseItems(text)
	if err != nil {
		c.log.Warn("Unparseable model reply", "reply_chars", len(text), "error", err)
		return gen, apierr.Generation("gemini.generate", err)
	}
	gen.Items = items

	c.log.Debug("Generation complete",
		"model", c.modelName,
		"items", len(items),
		"prompt_tokens", gen.PromptTokens,
		"output_tokens", gen.OutputTokens,
	)
	return gen, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

func copyUsage(gen *models.Generation, resp *genai.GenerateContentResponse) {
	if resp == nil || resp.UsageMetadata == nil {
		return
	}
	gen.PromptTokens = resp.UsageMetadata.PromptTokenCount
	gen.OutputTokens = resp.UsageMetadata.CandidatesTokenCount
	gen.TotalTokens = resp.UsageMetadata.TotalTokenCount
}

// parseItems decodes the JSON array in text. Markdown fences and prose around
// the array are tolerated. Elements that are not objects become empty
// questions so the item count is preserved.
func parseItems(text string) ([]models.RawQuestion, error) {
	jsonText := extractJSONArray(text)
	if jsonText == "" {
		return nil, ErrNoJSONArray
	}

	var elems []any
	decoder := json.NewDecoder(strings.NewReader(jsonText))
	decoder.UseNumber()
	if err := decoder.Decode(&elems); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	items := make([]models.RawQuestion, 0, len(elems))
	for _, e := range elems {
		obj, ok := e.(map[string]any)
		if !ok {
			obj = map[string]any{}
		}
		items = append(items, models.RawQuestion(obj))
	}
	return items, nil
}

// extractJSONArray returns the outermost [...] span of text, or "" when there
// is none.
func extractJSONArray(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}

func toGenaiSchema(s *models.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Enum) > 0 {
		out.Enum = append([]string(nil), s.Enum...)
	}
	if len(s.Required) > 0 {
		out.Required = append([]string(nil), s.Required...)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func toGenaiType(t models.SchemaType) genai.Type {
	switch t {
	case models.TypeString:
		return genai.TypeString
	case models.TypeInteger:
		return genai.TypeInteger
	case models.TypeNumber:
		return genai.TypeNumber
	case models.TypeBoolean:
		return genai.TypeBoolean
	case models.TypeArray:
		return genai.TypeArray
	case models.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}
