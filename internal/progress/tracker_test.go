package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/gitzip-go/internal/domain"
)

type recorder struct {
	mu     sync.Mutex
	events []domain.ProgressEvent
}

func (r *recorder) OnProgress(e domain.ProgressEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) percents() []int {
	out := make([]int, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Percent)
	}
	return out
}

func TestTracker_FullRequest(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(rec)

	tr.Reset()
	tr.SetStatus(domain.StatusPreparing, "Resolving")
	tr.Begin(3)
	for i := 0; i < 3; i++ {
		tr.Advance("fetched")
	}
	assert.Equal(t, 50, tr.State().Percent)

	tr.BeginCompression()
	for i := 0; i < 3; i++ {
		tr.Advance("compressed")
	}
	assert.Equal(t, 99, tr.State().Percent)

	tr.SetStatus(domain.StatusDone, "Saving")

	// one event per mutation
	require.Len(t, rec.events, 1+1+1+3+1+3+1)
	assert.Equal(t, []int{0, 0, 0, 16, 33, 50, 50, 66, 83, 99, 100}, rec.percents())

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, domain.StatusDone, last.Status)
	assert.Equal(t, "Saving", last.Message)

	for i, e := range rec.events[:len(rec.events)-1] {
		assert.Less(t, e.Percent, 100, "event %d", i)
	}
}

func TestTracker_AdvanceBeyondTotal(t *testing.T) {
	tr := NewTracker(nil)
	tr.Begin(1)
	tr.Advance("a")
	tr.Advance("b")

	s := tr.State()
	assert.Equal(t, 1, s.CompletedCount)
	assert.Equal(t, 1, s.TotalCount)
	assert.Equal(t, "b", s.Message)
	assert.Equal(t, 50, s.Percent)
}

func TestTracker_ErrorKeepsPercent(t *testing.T) {
	tr := NewTracker(nil)
	tr.Begin(4)
	tr.Advance("a")
	tr.SetStatus(domain.StatusError, "boom")

	s := tr.State()
	assert.Equal(t, domain.StatusError, s.Status)
	assert.Equal(t, 12, s.Percent)

	tr.Reset()
	assert.Equal(t, domain.ProgressState{Status: domain.StatusIdle}, tr.State())
}

func TestTracker_EmptyRequest(t *testing.T) {
	tr := NewTracker(nil)
	tr.Begin(0)
	tr.BeginCompression()
	assert.Equal(t, 0, tr.State().Percent)
	tr.SetStatus(domain.StatusDone, "")
	assert.Equal(t, 100, tr.State().Percent)
}

func TestTracker_ConcurrentAdvanceIsMonotonic(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(rec)
	tr.Begin(200)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Advance("x")
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, tr.State().CompletedCount)
	p := rec.percents()
	for i := 1; i < len(p); i++ {
		assert.GreaterOrEqual(t, p[i], p[i-1])
	}
	assert.Equal(t, 50, p[len(p)-1])
}
