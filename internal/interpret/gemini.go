package interpret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/rpattn/scenariogen/internal/domain"
)

const defaultGeminiModel = "gemini-2.0-flash-exp"

// Gemini interprets prompts through the Gemini API and falls back to the
// given interpreter when the model is unreachable or returns garbage.
type Gemini struct {
	apiKey   string
	model    string
	fallback Interpreter
	logger   *zap.Logger
}

var _ Interpreter = (*Gemini)(nil)

type GeminiOption func(*Gemini)

// WithModel overrides the Gemini model identifier.
func WithModel(model string) GeminiOption {
	return func(g *Gemini) {
		if strings.TrimSpace(model) != "" {
			g.model = model
		}
	}
}

// WithFallback sets the interpreter used when the API call fails.
func WithFallback(fallback Interpreter) GeminiOption {
	return func(g *Gemini) {
		g.fallback = fallback
	}
}

func NewGemini(apiKey string, logger *zap.Logger, opts ...GeminiOption) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gemini{
		apiKey: apiKey,
		model:  defaultGeminiModel,
		logger: logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Gemini) Interpret(ctx context.Context, prompt string, dataset DatasetContext) ([]domain.ChangeSpec, error) {
	specs, err := g.interpretRemote(ctx, prompt, dataset)
	if err == nil {
		return specs, nil
	}
	if g.fallback == nil {
		return nil, err
	}
	g.logger.Warn("gemini interpretation failed, using fallback", zap.Error(err))
	return g.fallback.Interpret(ctx, prompt, dataset)
}

func (g *Gemini) interpretRemote(ctx context.Context, prompt string, dataset DatasetContext) ([]domain.ChangeSpec, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.3)),
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt(dataset)},
			},
		},
	}

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	requests, err := decodeChangeRequests(result.Text())
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, ErrNotInterpretable
	}
	return Specs(requests), nil
}

// decodeChangeRequests parses the model output, repairing malformed JSON
// and accepting array, {"changes": [...]} and single-object shapes.
func decodeChangeRequests(text string) ([]ChangeRequest, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNotInterpretable
	}
	repaired, err := jsonrepair.RepairJSON(text)
	if err != nil {
		return nil, fmt.Errorf("repair model output: %w", err)
	}

	var requests []ChangeRequest
	if err := json.Unmarshal([]byte(repaired), &requests); err == nil {
		return requests, nil
	}

	var wrapped struct {
		Changes []ChangeRequest `json:"changes"`
	}
	if err := json.Unmarshal([]byte(repaired), &wrapped); err == nil && len(wrapped.Changes) > 0 {
		return wrapped.Changes, nil
	}

	var single ChangeRequest
	if err := json.Unmarshal([]byte(repaired), &single); err == nil {
		return []ChangeRequest{single}, nil
	}
	return nil, fmt.Errorf("unexpected model output shape: %w", ErrNotInterpretable)
}

// systemPrompt renders the dataset's drivers and columns into the
// instruction block so the model filters on things that exist.
func systemPrompt(dataset DatasetContext) string {
	var b strings.Builder
	b.WriteString("You are a scenario creation assistant. ")
	b.WriteString("Interpret the user's request and return a JSON array of change objects.\n\n")

	b.WriteString("Available CSV columns (use in csvFilters):\n")
	for _, column := range dataset.Columns {
		b.WriteString("- ")
		b.WriteString(column)
		if samples := dataset.ColumnValues[column]; len(samples) > 0 {
			b.WriteString(": ")
			b.WriteString(strings.Join(limit(samples, 10), ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nAvailable value drivers (use in filters):\n")
	for driver, options := range dataset.Drivers {
		b.WriteString("- ")
		b.WriteString(driver)
		if len(options) > 0 {
			b.WriteString(": ")
			b.WriteString(strings.Join(limit(options, 10), ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString(`
Each change object has this structure:
{
  "filters": {"valueDriverReferenceId": ["option1"]},
  "csvFilters": {"Column Name": ["value1"]},
  "priceChange": number or null,
  "priceChangeType": "Absolute" | "Percentage" | "Target",
  "priceChangeRange": boolean,
  "priceChangeFrom": number or null,
  "priceChangeTo": number or null,
  "priceChangeStep": number or null,
  "availabilityChange": number or null,
  "availabilityChangeType": "Absolute" | "Percentage",
  "availabilityChangeRange": boolean,
  "availabilityChangeFrom": number or null,
  "availabilityChangeTo": number or null,
  "availabilityChangeStep": number or null,
  "costChange": number or null,
  "costChangeType": "Absolute" | "Percentage",
  "costChangeRange": boolean,
  "costChangeFrom": number or null,
  "costChangeTo": number or null,
  "costChangeStep": number or null
}

Rules:
- A range like "5% to 15%" sets the Range fields and leaves the single value null.
- A single value sets the single value field with Range false.
- "competitor" maps to csvFilters {"Is Competitor": ["Yes"]}; "own products" to ["No"].
- Use "Absolute" for fixed amounts, "Percentage" for percentages.
- Use "Target" only when the user specifies a target price.
- Return only valid JSON, no markdown or explanations.`)
	return b.String()
}

func limit(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
