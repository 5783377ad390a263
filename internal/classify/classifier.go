// Package classify delegates the task-to-section assignment decision to an
// external LLM provider. Providers return machine-usable IDs; callers must
// treat every returned ID as untrusted until it is validated against the
// current project snapshot.
package classify

import (
	"context"

	"github.com/outlying/TodoistSorter/internal/todoist"
)

// Entry pairs a human-readable label with its Todoist ID.
type Entry struct {
	Label string
	ID    string
}

// Request carries the unassigned tasks and the candidate sections for one
// classification call.
type Request struct {
	Tasks    []Entry
	Sections []Entry
}

// Proposal is a single task-to-section assignment suggested by a provider.
// The IDs are not guaranteed to exist in the project.
type Proposal struct {
	TaskID    string `json:"task_id"`
	SectionID string `json:"section_id"`
}

// Classifier maps unassigned tasks onto sections in one request/response
// round trip. Implementations are non-deterministic.
type Classifier interface {
	Assign(ctx context.Context, req Request) ([]Proposal, error)
}

// BuildRequest renders tasks and sections into classifier entries, keeping
// snapshot order. No deduplication, no truncation.
func BuildRequest(tasks []todoist.Task, sections []todoist.Section) Request {
	req := Request{
		Tasks:    make([]Entry, 0, len(tasks)),
		Sections: make([]Entry, 0, len(sections)),
	}
	for _, task := range tasks {
		req.Tasks = append(req.Tasks, Entry{Label: task.Content, ID: task.ID})
	}
	for _, section := range sections {
		req.Sections = append(req.Sections, Entry{Label: section.Name, ID: section.ID})
	}
	return req
}
