// Package progress keeps the completion accounting of one top-level request
// and reports every change to an observer.
package progress

import (
	"sync"

	"github.com/quantmind-br/gitzip-go/internal/domain"
)

// Tracker counts completed items across two phases (fetch, then compress)
// of equal weight. Percent is (offset + completed) / (total * 2) * 100 and
// stays below 100 until the Done status is set.
//
// Observers are invoked synchronously while the tracker is locked, one call
// per mutation. They must not call back into the Tracker.
type Tracker struct {
	mu       sync.Mutex
	observer domain.Observer

	completed int
	total     int
	offset    int
	status    domain.Status
	message   string
	percent   int
}

// NewTracker creates an idle tracker. observer may be nil.
func NewTracker(observer domain.Observer) *Tracker {
	return &Tracker{observer: observer, status: domain.StatusIdle}
}

// Reset clears all counters at the start of a request
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.completed, t.total, t.offset = 0, 0, 0
	t.status = domain.StatusIdle
	t.message = ""
	t.percent = 0
	t.emit()
}

// Begin declares the number of items of the fetch phase
func (t *Tracker) Begin(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if total < 0 {
		total = 0
	}
	t.total = total
	t.completed = 0
	t.offset = 0
	t.status = domain.StatusProcessing
	t.emit()
}

// BeginCompression moves to the second half of the range
func (t *Tracker) BeginCompression() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.offset = t.total
	t.completed = 0
	t.status = domain.StatusProcessing
	t.emit()
}

// Advance records one completed item. Calls beyond the declared total
// only update the message.
func (t *Tracker) Advance(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.completed < t.total {
		t.completed++
	}
	t.message = message
	t.emit()
}

// SetStatus changes the status and message. Done sets the percentage to 100.
func (t *Tracker) SetStatus(status domain.Status, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = status
	t.message = message
	t.emit()
}

// State returns a snapshot of the current accounting
func (t *Tracker) State() domain.ProgressState {
	t.mu.Lock()
	defer t.mu.Unlock()

	return domain.ProgressState{
		CompletedCount: t.completed,
		TotalCount:     t.total,
		Status:         t.status,
		Message:        t.message,
		Percent:        t.percent,
	}
}

// emit recomputes the percentage and notifies the observer. Callers hold mu.
func (t *Tracker) emit() {
	t.percent = t.compute()
	if t.observer != nil {
		t.observer.OnProgress(domain.ProgressEvent{
			Status:  t.status,
			Message: t.message,
			Percent: t.percent,
		})
	}
}

func (t *Tracker) compute() int {
	switch t.status {
	case domain.StatusDone:
		return 100
	case domain.StatusIdle:
		return 0
	case domain.StatusError:
		return t.percent
	}

	if t.total == 0 {
		return t.percent
	}
	p := (t.offset + t.completed) * 100 / (t.total * 2)
	if p > 99 {
		p = 99
	}
	if p < t.percent {
		return t.percent
	}
	return p
}
