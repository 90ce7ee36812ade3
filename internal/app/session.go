package app

import (
	"sync"

	"github.com/quantmind-br/gitzip-go/internal/domain"
	"github.com/quantmind-br/gitzip-go/internal/progress"
	"github.com/quantmind-br/gitzip-go/internal/resolver"
)

// State is the orchestrator's position in a top-level request
type State string

const (
	StateIdle        State = "idle"
	StatePreparing   State = "preparing"
	StateListing     State = "listing"
	StateFetching    State = "fetching"
	StateCompressing State = "compressing"
	StateDone        State = "done"
	StateError       State = "error"
)

// Session is the cross-request state of one orchestrator: the single-flight
// guard, the branch cache and the progress tracker. The branch cache lives
// as long as the session.
type Session struct {
	mu        sync.Mutex
	busy      bool
	state     State
	requestID string

	branches *resolver.BranchCache
	tracker  *progress.Tracker
}

// Snapshot is a point-in-time view of a Session
type Snapshot struct {
	State     State                `json:"state"`
	Busy      bool                 `json:"busy"`
	RequestID string               `json:"request_id,omitempty"`
	Progress  domain.ProgressState `json:"progress"`
}

// NewSession creates an idle session
func NewSession(webURL string, observer domain.Observer) *Session {
	return &Session{
		state:    StateIdle,
		branches: resolver.NewBranchCache(webURL),
		tracker:  progress.NewTracker(observer),
	}
}

// Begin claims the session for a request. It fails with domain.ErrBusy
// while another request holds it.
func (s *Session) Begin(requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return domain.ErrBusy
	}
	s.busy = true
	s.requestID = requestID
	s.state = StatePreparing
	return nil
}

// End records the terminal state and releases the session
func (s *Session) End(final State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = final
	s.busy = false
}

// SetState records a transition of the running request
func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{State: s.state, Busy: s.busy, RequestID: s.requestID}
	s.mu.Unlock()

	snap.Progress = s.tracker.State()
	return snap
}

// BranchCache returns the session's branch cache
func (s *Session) BranchCache() *resolver.BranchCache {
	return s.branches
}

// Tracker returns the session's progress tracker
func (s *Session) Tracker() *progress.Tracker {
	return s.tracker
}
