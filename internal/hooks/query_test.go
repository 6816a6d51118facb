package hooks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/victorgomez09/healthflow/internal/models"
	"github.com/victorgomez09/healthflow/internal/obs"
)

type filter struct {
	State string
	Page  int
}

// recorder is a fetcher whose calls can be held and released individually.
type recorder struct {
	mu    sync.Mutex
	calls []filter
	gates map[int]chan struct{}
	fail  map[int]error
}

func newRecorder() *recorder {
	return &recorder{gates: map[int]chan struct{}{}, fail: map[int]error{}}
}

// hold makes call n (0-based) block until release(n).
func (r *recorder) hold(n int) {
	r.mu.Lock()
	r.gates[n] = make(chan struct{})
	r.mu.Unlock()
}

func (r *recorder) release(n int) {
	r.mu.Lock()
	close(r.gates[n])
	r.mu.Unlock()
}

func (r *recorder) failOn(n int, err error) {
	r.mu.Lock()
	r.fail[n] = err
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) fetch(ctx context.Context, p filter) ([]string, *models.Meta, error) {
	r.mu.Lock()
	n := len(r.calls)
	r.calls = append(r.calls, p)
	gate := r.gates[n]
	err := r.fail[n]
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, nil, err
	}
	return []string{p.State, p.State + "-2"}, &models.Meta{Page: p.Page, Total: 2}, nil
}

func newTestQuery(t *testing.T, r *recorder) *Query[filter, []string] {
	t.Helper()
	q := NewQuery(context.Background(), "test", r.fetch, obs.NewMetrics(), zaptest.NewLogger(t))
	t.Cleanup(q.Close)
	return q
}

func TestQuery_FilterChangeTriggersExactlyOneRequest(t *testing.T) {
	r := newRecorder()
	q := newTestQuery(t, r)

	q.Update(filter{State: "Lagos"}, DefaultOptions())
	q.Wait()
	require.Equal(t, 1, r.count())

	// same values, new record: no request
	q.Update(filter{State: "Lagos"}, DefaultOptions())
	q.Update(filter{State: "Lagos"}, DefaultOptions())
	q.Wait()
	assert.Equal(t, 1, r.count())

	q.Update(filter{State: "Kano"}, DefaultOptions())
	q.Wait()
	require.Equal(t, 2, r.count())
	assert.Equal(t, filter{State: "Kano"}, r.calls[1])

	st := q.State()
	assert.Equal(t, []string{"Kano", "Kano-2"}, st.Data)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	require.NotNil(t, st.Meta)
	assert.Equal(t, 2, st.Meta.Total)
}

func TestQuery_LoadingWhileInFlight(t *testing.T) {
	r := newRecorder()
	r.hold(0)
	q := newTestQuery(t, r)

	q.Update(filter{State: "Lagos"}, DefaultOptions())
	assert.True(t, q.State().Loading)

	r.release(0)
	q.Wait()
	assert.False(t, q.State().Loading)
}

func TestQuery_StaleResultDiscarded(t *testing.T) {
	r := newRecorder()
	r.hold(0)
	q := newTestQuery(t, r)

	q.Update(filter{State: "Lagos"}, DefaultOptions())
	q.Update(filter{State: "Kano"}, DefaultOptions())

	// the later request completes first
	require.Eventually(t, func() bool { return !q.State().Loading }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"Kano", "Kano-2"}, q.State().Data)

	// then the slow earlier one arrives and must not overwrite it
	r.release(0)
	q.Wait()
	assert.Equal(t, []string{"Kano", "Kano-2"}, q.State().Data)
}

func TestQuery_ErrorClearsData(t *testing.T) {
	r := newRecorder()
	r.failOn(1, errors.New("HTTP 500: Internal Server Error"))
	q := newTestQuery(t, r)

	q.Update(filter{State: "Lagos"}, DefaultOptions())
	q.Wait()
	require.Len(t, q.State().Data, 2)

	q.Refetch()
	q.Wait()

	st := q.State()
	assert.Len(t, st.Data, 0)
	assert.Equal(t, "HTTP 500: Internal Server Error", st.Error)
	assert.Nil(t, st.Meta)
	assert.False(t, st.Loading)

	// next success clears the error
	q.Refetch()
	q.Wait()
	assert.Empty(t, q.State().Error)
	assert.Len(t, q.State().Data, 2)
}

func TestQuery_DisabledIssuesNoRequest(t *testing.T) {
	r := newRecorder()
	q := newTestQuery(t, r)

	q.Update(filter{State: "Lagos"}, Options{Enabled: false})
	q.Refetch()
	q.Wait()
	assert.Equal(t, 0, r.count())
	assert.False(t, q.State().Loading)

	q.Update(filter{State: "Lagos"}, Options{Enabled: true})
	q.Wait()
	assert.Equal(t, 1, r.count())
}

func TestQuery_CloseDropsInFlightResult(t *testing.T) {
	r := newRecorder()
	r.hold(0)
	q := NewQuery(context.Background(), "test", r.fetch, nil, nil)

	var notified atomic.Int32
	q.Subscribe(func(Result[[]string]) { notified.Add(1) })

	q.Update(filter{State: "Lagos"}, DefaultOptions())
	require.Eventually(t, func() bool { return notified.Load() >= 1 }, time.Second, time.Millisecond)
	q.Close()
	before := notified.Load()

	r.release(0)
	q.Wait()
	time.Sleep(10 * time.Millisecond)

	assert.True(t, q.State().Loading, "no state write after Close")
	assert.Nil(t, q.State().Data)
	assert.Equal(t, before, notified.Load())

	// Update after Close is ignored
	q.Update(filter{State: "Kano"}, DefaultOptions())
	assert.Equal(t, 1, r.count())
}

func TestQuery_PollingLifecycle(t *testing.T) {
	r := newRecorder()
	q := newTestQuery(t, r)

	q.Update(filter{State: "Lagos"}, Options{Enabled: true, RefetchInterval: 5 * time.Millisecond})
	require.Eventually(t, func() bool { return r.count() >= 3 }, time.Second, time.Millisecond)
	assert.True(t, q.Polling())

	// disabling tears the timer down
	q.Update(filter{State: "Lagos"}, Options{Enabled: false, RefetchInterval: 5 * time.Millisecond})
	assert.False(t, q.Polling())
	q.Wait()
	n := r.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, r.count())

	// re-enabling with a new interval restarts it, Close stops it
	q.Update(filter{State: "Lagos"}, Options{Enabled: true, RefetchInterval: 5 * time.Millisecond})
	require.Eventually(t, func() bool { return r.count() >= n+3 }, time.Second, time.Millisecond)
	q.Close()
	assert.False(t, q.Polling())
	q.Wait()
	n = r.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, r.count())
}

func TestQuery_IntervalChangeRestartsPollingWithoutRefetch(t *testing.T) {
	r := newRecorder()
	q := newTestQuery(t, r)

	q.Update(filter{State: "Lagos"}, Options{Enabled: true, RefetchInterval: time.Hour})
	q.Wait()
	require.Equal(t, 1, r.count())

	q.Update(filter{State: "Lagos"}, Options{Enabled: true, RefetchInterval: 2 * time.Hour})
	q.Wait()
	assert.Equal(t, 1, r.count(), "interval change alone is not a filter change")
	assert.True(t, q.Polling())
}

func TestQuery_SubscribeUnsubscribe(t *testing.T) {
	r := newRecorder()
	q := newTestQuery(t, r)

	var last atomic.Value
	unsubscribe := q.Subscribe(func(res Result[[]string]) { last.Store(res) })

	q.Update(filter{State: "Lagos"}, DefaultOptions())
	q.Wait()
	require.Eventually(t, func() bool {
		res, ok := last.Load().(Result[[]string])
		return ok && !res.Loading && len(res.Data) == 2
	}, time.Second, time.Millisecond)

	unsubscribe()
	q.Update(filter{State: "Kano"}, DefaultOptions())
	q.Wait()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, "Lagos", last.Load().(Result[[]string]).Data[0])
}

func TestQuery_WaitDuringPolling(t *testing.T) {
	r := newRecorder()
	q := newTestQuery(t, r)

	q.Update(filter{State: "Lagos"}, Options{Enabled: true, RefetchInterval: 50 * time.Microsecond})

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				q.Wait()
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return r.count() >= 10 }, time.Second, time.Millisecond)
	q.Close()
	q.Wait()
}

func TestQuery_WaitIgnoresLaterFetches(t *testing.T) {
	r := newRecorder()
	r.hold(0)
	r.hold(1)
	q := newTestQuery(t, r)

	q.Update(filter{State: "Lagos"}, DefaultOptions())

	waited := make(chan struct{})
	go func() {
		q.Wait()
		close(waited)
	}()
	time.Sleep(10 * time.Millisecond)

	q.Refetch()
	r.release(0)

	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked on a fetch started after it was called")
	}
	assert.True(t, q.State().Loading)

	r.release(1)
	q.Wait()
	assert.False(t, q.State().Loading)
	assert.Equal(t, []string{"Lagos", "Lagos-2"}, q.State().Data)
}

func TestQuery_SettledSurvivesNextFetch(t *testing.T) {
	r := newRecorder()
	q := newTestQuery(t, r)

	assert.Zero(t, q.Settled().Seq)

	q.Update(filter{State: "Lagos"}, DefaultOptions())
	q.Wait()
	first := q.Settled()
	assert.NotZero(t, first.Seq)

	r.hold(1)
	q.Refetch()
	assert.True(t, q.State().Loading)
	assert.Equal(t, first.Seq, q.State().Seq, "loading keeps the seq of the data it still shows")

	settled := q.Settled()
	assert.False(t, settled.Loading)
	assert.Equal(t, first.Seq, settled.Seq)
	assert.Equal(t, []string{"Lagos", "Lagos-2"}, settled.Data)

	r.release(1)
	q.Wait()
	assert.Greater(t, q.Settled().Seq, first.Seq)
}
