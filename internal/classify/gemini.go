package classify

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClassifier implements Classifier using Google's Gemini API with
// JSON-constrained output.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// NewGeminiClassifier creates a Gemini classifier.
func NewGeminiClassifier(ctx context.Context, apiKey, model string) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClassifier{
		client: client,
		model:  model,
	}, nil
}

// geminiAssignmentSchema mirrors assignmentRawSchema in the SDK's schema type.
// Gemini takes the schema via generationConfig rather than a response_format
// field. See: https://ai.google.dev/gemini-api/docs/structured-output
func geminiAssignmentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"task_to_sections": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"task_id":    {Type: genai.TypeString},
						"section_id": {Type: genai.TypeString},
					},
					Required: []string{"task_id", "section_id"},
				},
			},
		},
		Required: []string{"task_to_sections"},
	}
}

// Assign sends the rendered request and returns the provider's proposals.
func (c *GeminiClassifier) Assign(ctx context.Context, req Request) ([]Proposal, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(renderUserPrompt(req), genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiAssignmentSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini request failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("no completion returned")
	}

	return parseProposals(text)
}
