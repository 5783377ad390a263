package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outlying/TodoistSorter/internal/todoist"
)

func TestBuildRequest_KeepsSnapshotOrder(t *testing.T) {
	tasks := []todoist.Task{
		{ID: "T1", Content: "Buy milk"},
		{ID: "T2", Content: "File taxes"},
	}
	sections := []todoist.Section{
		{ID: "S1", Name: "Work"},
		{ID: "S2", Name: "Home"},
	}

	req := BuildRequest(tasks, sections)

	require.Len(t, req.Tasks, 2)
	require.Len(t, req.Sections, 2)
	assert.Equal(t, Entry{Label: "Buy milk", ID: "T1"}, req.Tasks[0])
	assert.Equal(t, Entry{Label: "File taxes", ID: "T2"}, req.Tasks[1])
	assert.Equal(t, Entry{Label: "Work", ID: "S1"}, req.Sections[0])
	assert.Equal(t, Entry{Label: "Home", ID: "S2"}, req.Sections[1])
}

func TestBuildRequest_NoDeduplication(t *testing.T) {
	tasks := []todoist.Task{
		{ID: "T1", Content: "Buy milk"},
		{ID: "T1", Content: "Buy milk"},
	}

	req := BuildRequest(tasks, nil)
	assert.Len(t, req.Tasks, 2)
}

func TestRenderUserPrompt_Deterministic(t *testing.T) {
	req := Request{
		Tasks:    []Entry{{Label: "Buy milk", ID: "T1"}},
		Sections: []Entry{{Label: "Work", ID: "S1"}, {Label: "Home", ID: "S2"}},
	}

	prompt := renderUserPrompt(req)

	assert.Contains(t, prompt, "Buy milk [TASK_ID: T1]")
	assert.Contains(t, prompt, "Work [SECTION_ID: S1]")
	assert.Contains(t, prompt, "Home [SECTION_ID: S2]")

	// Tasks listed before sections.
	assert.Less(t, strings.Index(prompt, "List of tasks:"), strings.Index(prompt, "List of sections:"))

	assert.Equal(t, prompt, renderUserPrompt(req))
}

func TestParseProposals(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Proposal
		wantErr bool
	}{
		{
			name:  "bare JSON",
			input: `{"task_to_sections": [{"task_id": "T1", "section_id": "S2"}]}`,
			want:  []Proposal{{TaskID: "T1", SectionID: "S2"}},
		},
		{
			name: "markdown fenced",
			input: "```json\n" +
				`{"task_to_sections": [{"task_id": "T1", "section_id": "S2"}]}` +
				"\n```",
			want: []Proposal{{TaskID: "T1", SectionID: "S2"}},
		},
		{
			name:  "surrounding prose",
			input: `Here is the mapping: {"task_to_sections": []} hope that helps`,
			want:  []Proposal{},
		},
		{
			name:    "no JSON at all",
			input:   "I cannot help with that",
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			input:   `{"task_to_sections": [{"task_id": 42}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProposals(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_NestedBraces(t *testing.T) {
	input := `prefix {"a": {"b": 1}} suffix`
	assert.Equal(t, `{"a": {"b": 1}}`, extractJSON(input))
}
