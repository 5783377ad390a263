package classify

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemInstruction = "I need you to assign a section to a task, based on task name and section name, the best you can. " +
	"Respond with a JSON object of the form {\"task_to_sections\": [{\"task_id\": \"...\", \"section_id\": \"...\"}]} " +
	"using the TASK_ID and SECTION_ID values exactly as given."

// renderUserPrompt produces the classifier input. Deterministic: same request,
// same prompt.
func renderUserPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("List of tasks:\n")
	for _, task := range req.Tasks {
		fmt.Fprintf(&sb, "%s [TASK_ID: %s]\n", task.Label, task.ID)
	}

	sb.WriteString("\nList of sections:\n")
	for _, section := range req.Sections {
		fmt.Fprintf(&sb, "%s [SECTION_ID: %s]\n", section.Label, section.ID)
	}

	return sb.String()
}

// assignmentEnvelope is the JSON object providers are asked to return.
type assignmentEnvelope struct {
	TaskToSections []Proposal `json:"task_to_sections"`
}

// assignmentRawSchema returns the JSON schema for the assignment envelope,
// in the raw map form the provider request builders consume.
func assignmentRawSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"task_to_sections": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"task_id":    map[string]interface{}{"type": "string"},
						"section_id": map[string]interface{}{"type": "string"},
					},
					"required":             []string{"task_id", "section_id"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"task_to_sections"},
		"additionalProperties": false,
	}
}

// parseProposals extracts the assignment list from a provider response.
// Handles responses wrapped in markdown fences or prose.
func parseProposals(response string) ([]Proposal, error) {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var envelope assignmentEnvelope
	if err := json.Unmarshal([]byte(jsonStr), &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse proposals: %w", err)
	}
	return envelope.TaskToSections, nil
}

// extractJSON finds the first JSON object in a response (handles markdown
// wrappers and surrounding prose).
func extractJSON(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}

	return ""
}
