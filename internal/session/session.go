package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"opsim/internal/forecast"
	"opsim/internal/queue"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrNoSuggestion     = errors.New("no suggestion for queue")
	ErrAdvisoryOnly     = errors.New("suggestion has no resource change")
	ErrNoSimulationRuns = errors.New("no simulation has been run in this session")
)

// Session is the caller-side state of one dashboard user: the snapshot being
// edited, the latest response, and how many suggestions have been accepted.
// Applying a suggestion replaces the snapshot, it never edits the previous one.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	state   queue.OperationalState
	version int
	last    *forecast.Response
	applied int
}

func New(state queue.OperationalState) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		state:     state.Clone(),
	}
}

// State returns a copy of the current snapshot.
func (s *Session) State() queue.OperationalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Snapshot returns a copy of the current snapshot together with the applied
// counter and the snapshot version, all read under one lock. Pass the version
// to Record once the forecast is done.
func (s *Session) Snapshot() (state queue.OperationalState, applied, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), s.applied, s.version
}

// ChangesApplied is the number of suggestions accepted so far.
func (s *Session) ChangesApplied() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Record stores the latest response so its suggestions can be applied. It
// reports false and keeps nothing when version is older than the current
// snapshot.
func (s *Session) Record(resp *forecast.Response, version int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version != s.version {
		return false
	}
	s.last = resp
	return true
}

// Last returns the most recently recorded response, if any.
func (s *Session) Last() *forecast.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Apply accepts the latest suggestion for queueID, swaps in the resulting
// snapshot and increments the applied counter.
func (s *Session) Apply(queueID string) (forecast.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return forecast.Suggestion{}, ErrNoSimulationRuns
	}

	var found *forecast.Suggestion
	for i := range s.last.Suggestions {
		if s.last.Suggestions[i].QueueID == queueID {
			found = &s.last.Suggestions[i]
			break
		}
	}
	if found == nil {
		return forecast.Suggestion{}, fmt.Errorf("%w %q", ErrNoSuggestion, queueID)
	}
	if found.ResourceChange == nil {
		return *found, fmt.Errorf("%q: %w", queueID, ErrAdvisoryOnly)
	}

	next, err := queue.ApplyChanges(s.state, []queue.ResourceChange{*found.ResourceChange})
	if err != nil {
		return *found, err
	}
	s.state = next
	s.version++
	s.applied++
	// the forecast no longer describes the new snapshot
	s.last = nil
	return *found, nil
}

// Replace swaps in a caller-edited snapshot.
func (s *Session) Replace(state queue.OperationalState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	s.version++
	s.last = nil
}
