// Package aiservice hosts the two AI endpoints the classifier clients call:
// zone classification and tag extraction, both backed by Gemini.
package aiservice

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/genai"

	"zonegram/internal/domain"
)

const defaultModel = "gemini-2.0-flash-lite"

// Gemini wraps the genai SDK for the two content operations.
type Gemini struct {
	apiKey string
	model  string
	logger *slog.Logger
}

// NewGemini creates a Gemini backend. The key comes from GEMINI_API_KEY.
func NewGemini(logger *slog.Logger) (*Gemini, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{apiKey: apiKey, model: model, logger: logger}, nil
}

// ClassifyContent asks the model to bucket content into one of the two
// built-in zones. Anything the model says that is not "productivity" is
// normalized to "entertainment".
func (g *Gemini) ClassifyContent(ctx context.Context, content string) (string, error) {
	prompt := fmt.Sprintf(
		"Classify the following content as either \"productivity\" or \"entertainment\". "+
			"Only respond with one of these two words.\n\nContent: %s\n\nClassification:",
		content,
	)

	text, err := g.generate(ctx, prompt, 10, 0.3)
	if err != nil {
		return "", err
	}

	zone := NormalizeClassification(text)
	g.logger.Debug("classified content", "zone", zone)
	return zone, nil
}

// ExtractTags asks the model for descriptive tags covering the content's
// theme, topic and nature.
func (g *Gemini) ExtractTags(ctx context.Context, content string) ([]string, error) {
	prompt := fmt.Sprintf(
		"Analyze the following content and extract relevant tags that categorize its theme, "+
			"topic, and nature. Return only a comma-separated list of tags, each tag being a "+
			"single word or short phrase. Content: %s",
		content,
	)

	text, err := g.generate(ctx, prompt, 256, 0.3)
	if err != nil {
		return nil, err
	}

	tags := SplitTags(text)
	g.logger.Debug("extracted tags", "count", len(tags))
	return tags, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string, maxTokens int32, temperature float32) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  g.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in Gemini response")
	}
	text := candidate.Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty text in Gemini response")
	}

	return text, nil
}

// NormalizeClassification maps raw model output onto the built-in zones.
// Mirrors the hosted function's behavior: an exact "productivity" wins,
// everything else is entertainment.
func NormalizeClassification(text string) string {
	if domain.Normalize(text) == domain.ZoneProductivity {
		return domain.ZoneProductivity
	}
	return domain.ZoneEntertainment
}

// SplitTags parses model output as a comma-separated tag list, trimming
// whitespace and dropping empties.
func SplitTags(text string) []string {
	var tags []string
	for _, t := range strings.Split(text, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
