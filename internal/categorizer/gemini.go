package categorizer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

const DefaultModelName = "gemini-2.5-flash"

// generator is the slice of the genai client used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiSuggester asks a Gemini model to pick a subcategory for a description.
type GeminiSuggester struct {
	models generator
	model  string
}

// NewGeminiSuggester creates a Vertex AI backed suggester. Credentials come
// from the environment as for every other Google client.
func NewGeminiSuggester(ctx context.Context, project, location, model string) (*GeminiSuggester, error) {
	cfg := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	}
	if project != "" {
		cfg.Backend = genai.BackendVertexAI
		cfg.Project = project
		cfg.Location = location
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("NewGeminiSuggester: create genai client: %w", err)
	}
	return newGeminiSuggester(client.Models, model), nil
}

func newGeminiSuggester(models generator, model string) *GeminiSuggester {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiSuggester{models: models, model: model}
}

type suggestion struct {
	Subcategory string `json:"subcategory"`
}

// Suggest returns one of candidates, or "" when the model declines.
func (g *GeminiSuggester) Suggest(ctx context.Context, description string, candidates []string) (string, error) {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	prompt := "You categorize credit card transactions for a personal budget.\n" +
		"Pick the single best subcategory for the transaction below from this list:\n- " +
		strings.Join(sorted, "\n- ") + "\n\n" +
		"Transaction description: " + description + "\n\n" +
		"Answer with JSON only: {\"subcategory\": \"<one of the list, or empty if none fits>\"}"

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Suggest: generate content: %w", err)
	}
	raw := resp.Text()
	if raw == "" {
		return "", fmt.Errorf("Suggest: empty response from model")
	}

	var out suggestion
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &out); err != nil {
		return "", fmt.Errorf("Suggest: unmarshal JSON: %w\nraw response: %s", err, raw)
	}

	for _, c := range candidates {
		if strings.EqualFold(c, strings.TrimSpace(out.Subcategory)) {
			return c, nil
		}
	}
	return "", nil
}

// cleanModelJSON strips Markdown fences and anything outside the outermost object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return strings.TrimSpace(s)
}

// Suggest proposes a subcategory for a row the matcher left uncategorized.
// The caller confirms before anything is learned.
func (c *Categorizer) Suggest(ctx context.Context, s Suggester, description string) (Result, error) {
	sub, err := s.Suggest(ctx, description, c.Subcategories())
	if err != nil {
		return Result{}, err
	}
	m, ok := c.Lookup(sub)
	if !ok {
		return Result{Method: domain.MethodNone}, nil
	}
	return c.result(m, 0, domain.MethodManual), nil
}
