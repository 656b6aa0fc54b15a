package usecase

import (
	"fmt"
	"sync"

	"github.com/foodscan/backend/internal/domain"
)

// StageTracker records the UI-observable status of each pipeline stage
// (upload, analyze, search). Valid transitions per stage:
//
//	idle -> in_progress -> {success, error}
//
// error and success are terminal for a run but re-entrant: a stage may go back
// to in_progress on retry. Analyze success auto-chains into search only when
// at least one item was detected.
type StageTracker struct {
	mu       sync.Mutex
	statuses map[domain.Stage]domain.StageStatus
}

// NewStageTracker creates a tracker with all stages idle
func NewStageTracker() *StageTracker {
	return &StageTracker{
		statuses: map[domain.Stage]domain.StageStatus{
			domain.StageUpload:  domain.StageIdle,
			domain.StageAnalyze: domain.StageIdle,
			domain.StageSearch:  domain.StageIdle,
		},
	}
}

// Begin moves a stage to in_progress. Allowed from idle, success, and error.
func (t *StageTracker) Begin(stage domain.Stage) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.statuses[stage] == domain.StageInProgress {
		return fmt.Errorf("stage %s already in progress", stage)
	}
	t.statuses[stage] = domain.StageInProgress
	return nil
}

// Succeed moves a stage from in_progress to success
func (t *StageTracker) Succeed(stage domain.Stage) error {
	return t.finish(stage, domain.StageSuccess)
}

// Fail moves a stage from in_progress to error. The stage remains retryable.
func (t *StageTracker) Fail(stage domain.Stage) error {
	return t.finish(stage, domain.StageError)
}

func (t *StageTracker) finish(stage domain.Stage, status domain.StageStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.statuses[stage] != domain.StageInProgress {
		return fmt.Errorf("stage %s is %s, not in progress", stage, t.statuses[stage])
	}
	t.statuses[stage] = status
	return nil
}

// CompleteAnalyze marks analyze successful and, when the normalized item list
// is non-empty, chains directly into search.
func (t *StageTracker) CompleteAnalyze(itemCount int) error {
	if err := t.Succeed(domain.StageAnalyze); err != nil {
		return err
	}
	if itemCount > 0 {
		return t.Begin(domain.StageSearch)
	}
	return nil
}

// Status returns the current status of one stage
func (t *StageTracker) Status(stage domain.Stage) domain.StageStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statuses[stage]
}

// Snapshot returns a copy of all stage statuses
func (t *StageTracker) Snapshot() map[domain.Stage]domain.StageStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := make(map[domain.Stage]domain.StageStatus, len(t.statuses))
	for stage, status := range t.statuses {
		snapshot[stage] = status
	}
	return snapshot
}
