package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/outlying/TodoistSorter/internal/todoist"
)

// Store is the task/section storage the reconciler reads and mutates.
// *todoist.Client satisfies it.
type Store interface {
	ListTasks(ctx context.Context, projectID string) ([]todoist.Task, error)
	ListSections(ctx context.Context, projectID string) ([]todoist.Section, error)
	MoveTask(ctx context.Context, taskID, sectionID string) error
}

// Snapshot is an immutable view of one project's tasks and sections, taken
// once per run. Mutations go through the store, never through the snapshot.
type Snapshot struct {
	Tasks    []todoist.Task
	Sections []todoist.Section

	taskLabels    map[string]string
	sectionLabels map[string]string
}

// loadSnapshot drains both paginated lists. The reads are independent, so
// they run concurrently; either failing aborts the load.
func loadSnapshot(ctx context.Context, store Store, projectID string) (*Snapshot, error) {
	snap := &Snapshot{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tasks, err := store.ListTasks(gctx, projectID)
		if err != nil {
			return &FetchError{Resource: "tasks", Err: err}
		}
		snap.Tasks = tasks
		return nil
	})
	g.Go(func() error {
		sections, err := store.ListSections(gctx, projectID)
		if err != nil {
			return &FetchError{Resource: "sections", Err: err}
		}
		snap.Sections = sections
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.taskLabels = make(map[string]string, len(snap.Tasks))
	for _, task := range snap.Tasks {
		snap.taskLabels[task.ID] = task.Content
	}
	snap.sectionLabels = make(map[string]string, len(snap.Sections))
	for _, section := range snap.Sections {
		snap.sectionLabels[section.ID] = section.Name
	}

	return snap, nil
}

// Unassigned returns the tasks with no section, in snapshot order.
func (s *Snapshot) Unassigned() []todoist.Task {
	var unassigned []todoist.Task
	for _, task := range s.Tasks {
		if task.SectionID == "" {
			unassigned = append(unassigned, task)
		}
	}
	return unassigned
}

// HasTask reports whether the task ID exists in the snapshot.
func (s *Snapshot) HasTask(id string) bool {
	_, ok := s.taskLabels[id]
	return ok
}

// HasSection reports whether the section ID exists in the snapshot.
func (s *Snapshot) HasSection(id string) bool {
	_, ok := s.sectionLabels[id]
	return ok
}

// TaskLabel resolves a task ID to its content, falling back to the raw ID.
func (s *Snapshot) TaskLabel(id string) string {
	if label, ok := s.taskLabels[id]; ok {
		return label
	}
	return id
}

// SectionLabel resolves a section ID to its name, falling back to the raw ID.
func (s *Snapshot) SectionLabel(id string) string {
	if label, ok := s.sectionLabels[id]; ok {
		return label
	}
	return id
}
