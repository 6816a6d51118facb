package hooks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/victorgomez09/healthflow/internal/models"
	"github.com/victorgomez09/healthflow/internal/obs"
	"github.com/victorgomez09/healthflow/internal/schedule"
)

// Fetcher loads D for params. It is called from its own goroutine.
type Fetcher[P comparable, D any] func(ctx context.Context, params P) (D, *models.Meta, error)

// Options are the non-filter inputs of a hook.
type Options struct {
	Enabled         bool
	RefetchInterval time.Duration
}

// DefaultOptions enables the hook without polling.
func DefaultOptions() Options {
	return Options{Enabled: true}
}

// Result is what a consumer renders.
type Result[D any] struct {
	Data    D
	Loading bool
	Error   string
	Meta    *models.Meta
	// Seq numbers the fetch that produced Data and Error. Zero until a fetch completes.
	Seq uint64
}

// Query binds a typed parameter record to a live result. The consumer calls Update every
// time it renders; a fetch is issued only when params differ (==) from the previous call
// or Enabled changed. Completions of superseded fetches are discarded.
type Query[P comparable, D any] struct {
	name    string
	fetch   Fetcher[P, D]
	ctx     context.Context
	logger  *zap.Logger
	metrics *obs.Metrics

	// opMu serializes Update, Refetch and Close so polling tasks are never orphaned.
	opMu sync.Mutex

	mu        sync.Mutex
	state     Result[D]
	settled   Result[D]
	params    P
	opts      Options
	hasParams bool
	seq       uint64
	closed    bool
	task      *schedule.Task
	listeners map[int]func(Result[D])
	nextID    int

	// pending holds the seq of every fetch whose goroutine has not returned.
	pending map[uint64]struct{}
	drained *sync.Cond

	dirty chan struct{}
	done  chan struct{}
}

// NewQuery creates an idle query. Nothing is fetched until the first Update. ctx is the
// parent of every fetch and of the polling task; closing the query does not cancel
// requests already in flight.
func NewQuery[P comparable, D any](ctx context.Context, name string, fetch Fetcher[P, D], metrics *obs.Metrics, logger *zap.Logger) *Query[P, D] {
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &Query[P, D]{
		name:      name,
		fetch:     fetch,
		ctx:       ctx,
		logger:    logger.With(zap.String("hook", name)),
		metrics:   metrics,
		listeners: make(map[int]func(Result[D])),
		pending:   make(map[uint64]struct{}),
		dirty:     make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	q.drained = sync.NewCond(&q.mu)
	go q.notifyLoop()
	return q
}

// Update feeds the current params and options. Unchanged inputs issue no request.
func (q *Query[P, D]) Update(params P, opts Options) {
	q.opMu.Lock()
	defer q.opMu.Unlock()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}

	first := !q.hasParams
	changed := first || params != q.params || opts.Enabled != q.opts.Enabled
	pollingChanged := first || opts.Enabled != q.opts.Enabled || opts.RefetchInterval != q.opts.RefetchInterval

	q.params = params
	q.opts = opts
	q.hasParams = true

	if changed && opts.Enabled {
		q.startFetchLocked()
	}

	var stop, start *schedule.Task
	if pollingChanged {
		stop = q.task
		q.task = nil
		if opts.Enabled && opts.RefetchInterval > 0 {
			q.task = schedule.NewTask(q.name, opts.RefetchInterval, q.poll, q.logger)
			start = q.task
		}
	}
	q.mu.Unlock()

	if stop != nil {
		stop.Stop()
	}
	if start != nil {
		start.Start(q.ctx)
	}
}

// Refetch re-runs the fetch with the current params. It does nothing while disabled.
func (q *Query[P, D]) Refetch() {
	q.opMu.Lock()
	defer q.opMu.Unlock()
	q.refetch()
}

func (q *Query[P, D]) refetch() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || !q.hasParams || !q.opts.Enabled {
		return
	}
	q.startFetchLocked()
}

// poll runs on the polling task. It must not take opMu: Update and Close hold it while
// stopping the task.
func (q *Query[P, D]) poll(context.Context) {
	q.refetch()
}

// State returns the current result.
func (q *Query[P, D]) State() Result[D] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Settled returns the result of the latest applied fetch, without the Loading flag of
// any fetch started after it.
func (q *Query[P, D]) Settled() Result[D] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.settled
}

// Params returns the params of the last Update.
func (q *Query[P, D]) Params() P {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.params
}

// Polling reports whether a polling task is active.
func (q *Query[P, D]) Polling() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.task != nil && q.task.Running()
}

// Subscribe registers fn to be called after state changes. Calls are made from a single
// goroutine; bursts of changes may be coalesced into one call with the latest state.
func (q *Query[P, D]) Subscribe(fn func(Result[D])) (unsubscribe func()) {
	q.mu.Lock()
	id := q.nextID
	q.nextID++
	q.listeners[id] = fn
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.listeners, id)
		q.mu.Unlock()
	}
}

// Close stops polling and drops every future state write and notification. Requests in
// flight complete and their results are discarded. Close is idempotent.
func (q *Query[P, D]) Close() {
	q.opMu.Lock()
	defer q.opMu.Unlock()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	task := q.task
	q.task = nil
	q.listeners = make(map[int]func(Result[D]))
	q.mu.Unlock()

	if task != nil {
		task.Stop()
	}
	close(q.done)
}

// Wait blocks until every fetch issued before the call has completed. Fetches started
// later, by polling for instance, are not waited for.
func (q *Query[P, D]) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()
	target := q.seq
	for q.pendingThroughLocked(target) {
		q.drained.Wait()
	}
}

func (q *Query[P, D]) pendingThroughLocked(target uint64) bool {
	for seq := range q.pending {
		if seq <= target {
			return true
		}
	}
	return false
}

// mutate applies fn to the data of the current result. It is a no-op after Close.
func (q *Query[P, D]) mutate(fn func(Result[D]) Result[D]) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.state = fn(q.state)
	q.mu.Unlock()
	q.markDirty()
}

func (q *Query[P, D]) startFetchLocked() {
	q.seq++
	seq := q.seq
	params := q.params

	q.state.Loading = true
	q.state.Error = ""
	q.markDirty()

	q.pending[seq] = struct{}{}
	go func() {
		data, meta, err := q.fetch(q.ctx, params)
		q.complete(seq, data, meta, err)
	}()
}

func (q *Query[P, D]) complete(seq uint64, data D, meta *models.Meta, err error) {
	q.mu.Lock()
	delete(q.pending, seq)
	q.drained.Broadcast()
	if q.closed || seq != q.seq {
		q.mu.Unlock()
		q.metrics.HookDiscarded(q.name)
		q.logger.Debug("Discarding superseded fetch result", zap.Uint64("seq", seq))
		return
	}

	if err != nil {
		var zero D
		q.state = Result[D]{Data: zero, Error: err.Error(), Seq: seq}
	} else {
		q.state = Result[D]{Data: data, Meta: meta, Seq: seq}
	}
	q.settled = q.state
	q.mu.Unlock()

	if err != nil {
		q.metrics.HookFetch(q.name, "error")
		q.logger.Warn("Fetch failed", zap.Error(err))
	} else {
		q.metrics.HookFetch(q.name, "success")
	}
	q.markDirty()
}

func (q *Query[P, D]) markDirty() {
	select {
	case q.dirty <- struct{}{}:
	default:
	}
}

func (q *Query[P, D]) notifyLoop() {
	for {
		select {
		case <-q.done:
			return
		case <-q.dirty:
		}

		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return
		}
		state := q.state
		listeners := make([]func(Result[D]), 0, len(q.listeners))
		for _, fn := range q.listeners {
			listeners = append(listeners, fn)
		}
		q.mu.Unlock()

		for _, fn := range listeners {
			fn(state)
		}
	}
}
