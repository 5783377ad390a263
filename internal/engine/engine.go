// Package engine reconciles unsectioned Todoist tasks against a project's
// sections. It delegates the assignment decision to a classifier, validates
// the returned IDs against the project snapshot, and applies the valid
// assignments concurrently with per-task failure isolation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/outlying/TodoistSorter/internal/classify"
)

// Outcome records the terminal result for one proposal.
type Outcome struct {
	Proposal classify.Proposal
	Err      error // nil on success
	Skipped  bool  // dry-run: validated but not applied
}

// Applied reports whether the proposal was successfully applied.
func (o Outcome) Applied() bool {
	return o.Err == nil && !o.Skipped
}

// Report aggregates per-proposal outcomes for one run. It always holds
// exactly one outcome per proposal the classifier returned.
type Report struct {
	Outcomes  []Outcome
	Applied   int
	Failed    int
	Skipped   int
	Attempted int // proposals that reached the apply phase
}

// Options configures a Reconciler.
type Options struct {
	// DryRun validates and reports proposals without calling MoveTask.
	DryRun bool
}

// Reconciler drives one fetch -> classify -> apply -> report run.
type Reconciler struct {
	store      Store
	classifier classify.Classifier
	logger     *zap.Logger
	opts       Options
}

// New creates a Reconciler. The caller resolves credentials and constructs
// the collaborators; the reconciler never reads environment or global config.
func New(store Store, classifier classify.Classifier, logger *zap.Logger, opts Options) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:      store,
		classifier: classifier,
		logger:     logger,
		opts:       opts,
	}
}

// Run reconciles one project. Fetch and classification failures abort the run
// before any mutation; failures in the apply phase are isolated per task and
// reported, never propagated to sibling tasks.
//
// Returns ErrNoApplies when proposals were attempted and none succeeded.
func (r *Reconciler) Run(ctx context.Context, projectID string) (*Report, error) {
	logger := r.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("project_id", projectID),
	)
	logger.Info("starting task-section assignment")

	snap, err := loadSnapshot(ctx, r.store, projectID)
	if err != nil {
		return nil, err
	}

	unassigned := snap.Unassigned()
	if len(unassigned) == 0 {
		logger.Info("all tasks already have sections assigned")
		return &Report{}, nil
	}
	logger.Info("found tasks without a section", zap.Int("count", len(unassigned)))

	req := classify.BuildRequest(unassigned, snap.Sections)

	logger.Info("requesting task-section mapping from classifier",
		zap.Int("tasks", len(req.Tasks)),
		zap.Int("sections", len(req.Sections)))
	proposals, err := r.classifier.Assign(ctx, req)
	if err != nil {
		return nil, &ClassificationError{Err: err}
	}
	logger.Info("received mapping from classifier", zap.Int("proposals", len(proposals)))

	report := buildReport(r.apply(ctx, snap, proposals))
	r.report(logger, snap, report)

	if report.Attempted > 0 && report.Applied == 0 {
		return report, ErrNoApplies
	}
	return report, nil
}

// apply validates every proposal and fans out one MoveTask call per valid
// one. Outcomes land in a pre-sized slice indexed by proposal position, so
// the goroutines share no state and a failing call never affects a sibling.
// The join waits for all calls regardless of individual failures.
func (r *Reconciler) apply(ctx context.Context, snap *Snapshot, proposals []classify.Proposal) []Outcome {
	outcomes := make([]Outcome, len(proposals))

	var wg sync.WaitGroup
	for i, proposal := range proposals {
		outcomes[i].Proposal = proposal

		if !snap.HasTask(proposal.TaskID) {
			outcomes[i].Err = fmt.Errorf("%w: unknown task %q", ErrInvalidReference, proposal.TaskID)
			continue
		}
		if !snap.HasSection(proposal.SectionID) {
			outcomes[i].Err = fmt.Errorf("%w: unknown section %q", ErrInvalidReference, proposal.SectionID)
			continue
		}
		if r.opts.DryRun {
			outcomes[i].Skipped = true
			continue
		}

		wg.Add(1)
		go func(i int, proposal classify.Proposal) {
			defer wg.Done()
			if err := r.store.MoveTask(ctx, proposal.TaskID, proposal.SectionID); err != nil {
				outcomes[i].Err = fmt.Errorf("move failed: %w", err)
			}
		}(i, proposal)
	}
	wg.Wait()

	return outcomes
}

// buildReport tallies outcomes. Attempted counts proposals that passed
// validation and were sent (or would be sent, in dry-run) to the store.
func buildReport(outcomes []Outcome) *Report {
	report := &Report{Outcomes: outcomes}
	for _, outcome := range outcomes {
		switch {
		case outcome.Skipped:
			report.Skipped++
		case outcome.Err == nil:
			report.Applied++
			report.Attempted++
		default:
			report.Failed++
			if !isInvalidReference(outcome.Err) {
				report.Attempted++
			}
		}
	}
	return report
}

// report emits exactly one line per outcome plus a terminal summary, with IDs
// resolved to labels where the snapshot knows them.
func (r *Reconciler) report(logger *zap.Logger, snap *Snapshot, report *Report) {
	for _, outcome := range report.Outcomes {
		task := snap.TaskLabel(outcome.Proposal.TaskID)
		section := snap.SectionLabel(outcome.Proposal.SectionID)
		fields := []zap.Field{
			zap.String("task_id", outcome.Proposal.TaskID),
			zap.String("section_id", outcome.Proposal.SectionID),
		}

		switch {
		case outcome.Skipped:
			logger.Info(fmt.Sprintf("Dry run: would move task '%s' to section '%s'", task, section), fields...)
		case outcome.Err != nil:
			logger.Error(fmt.Sprintf("Failed to move task '%s' to section '%s': %v", task, section, outcome.Err), fields...)
		default:
			logger.Info(fmt.Sprintf("Successfully moved task '%s' to section '%s'", task, section), fields...)
		}
	}

	logger.Info("task-section assignment completed",
		zap.Int("proposals", len(report.Outcomes)),
		zap.Int("applied", report.Applied),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped))
}

func isInvalidReference(err error) bool {
	return errors.Is(err, ErrInvalidReference)
}
