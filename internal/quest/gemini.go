package quest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrNoAPIKey is returned when the Gemini classifier has no credentials.
var ErrNoAPIKey = errors.New("quest: Gemini API key is required")

const DefaultModel = "gemini-3-flash-preview"

const promptTemplate = `Analyze this accomplishment from the user: %q.
Zen RPG. Rank (S, A, B, C, D) and XP (20-100).
JSON format: {rank, xp, title, summary, auraColor, iconHtml}.`

// verdictSchema forces a JSON object with every Verdict field.
var verdictSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"rank":      {Type: genai.TypeString},
		"xp":        {Type: genai.TypeNumber},
		"title":     {Type: genai.TypeString},
		"summary":   {Type: genai.TypeString},
		"auraColor": {Type: genai.TypeString},
		"iconHtml":  {Type: genai.TypeString},
	},
	Required: []string{"rank", "xp", "title", "summary", "auraColor", "iconHtml"},
}

// GeminiClassifier scores entries with a Gemini model.
type GeminiClassifier struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// NewGeminiClassifier creates a classifier for the Gemini API.
func NewGeminiClassifier(ctx context.Context, apiKey, model string, log *zap.Logger) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create GenAI client: %w", err)
	}

	return &GeminiClassifier{client: client, model: model, log: log}, nil
}

// Model returns the model name in use.
func (c *GeminiClassifier) Model() string { return c.model }

// Classify asks the model for a verdict on input.
func (c *GeminiClassifier) Classify(ctx context.Context, input string) (Verdict, error) {
	resp, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(Prompt(input)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   verdictSchema,
		},
	)
	if err != nil {
		return Verdict{}, fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := resp.Text()
	c.log.Debug("Classifier response", zap.String("model", c.model), zap.Int("bytes", len(text)))
	return ParseVerdict(text)
}

// Prompt is the instruction sent for one entry.
func Prompt(input string) string {
	return fmt.Sprintf(promptTemplate, input)
}

// ParseVerdict decodes a model reply. An empty reply is an empty verdict,
// which New turns into all fallbacks.
func ParseVerdict(text string) (Verdict, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "{}"
	}
	var v Verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	return v, nil
}
