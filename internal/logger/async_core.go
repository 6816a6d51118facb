package logger

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap/zapcore"
)

type logEntry struct {
	core   zapcore.Core
	entry  zapcore.Entry
	fields []zapcore.Field
}

// asyncWriter is the batching goroutine shared by an AsyncCore and all cores derived
// from it with With.
type asyncWriter struct {
	entries       chan logEntry
	quit          chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
	batchSize     int
	flushInterval time.Duration
	dropped       atomic.Uint64
}

// AsyncCore queues entries for a background writer so file I/O never blocks callers.
// When the queue is full entries are dropped and counted.
type AsyncCore struct {
	core   zapcore.Core
	writer *asyncWriter
}

func NewAsyncCore(core zapcore.Core, bufferSize, batchSize int, flushInterval time.Duration) *AsyncCore {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	if batchSize <= 0 || batchSize > bufferSize {
		batchSize = bufferSize / 10
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}

	w := &asyncWriter{
		entries:       make(chan logEntry, bufferSize),
		quit:          make(chan struct{}),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
	w.wg.Add(1)
	go w.run(core)

	return &AsyncCore{core: core, writer: w}
}

func (w *asyncWriter) run(root zapcore.Core) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	batch := make([]logEntry, 0, w.batchSize)
	flush := func() {
		for _, e := range batch {
			if err := e.core.Write(e.entry, e.fields); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
			}
		}
		batch = batch[:0]
		if dropped := w.dropped.Swap(0); dropped > 0 {
			_ = root.Write(zapcore.Entry{
				Level:      zapcore.WarnLevel,
				Time:       time.Now(),
				LoggerName: "async",
				Message:    fmt.Sprintf("dropped %d log entries due to full buffer", dropped),
			}, nil)
		}
	}

	for {
		select {
		case e := <-w.entries:
			batch = append(batch, e)
			if len(batch) >= w.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-w.quit:
			for {
				select {
				case e := <-w.entries:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (ac *AsyncCore) Enabled(level zapcore.Level) bool {
	return ac.core.Enabled(level)
}

func (ac *AsyncCore) With(fields []zapcore.Field) zapcore.Core {
	return &AsyncCore{core: ac.core.With(fields), writer: ac.writer}
}

func (ac *AsyncCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if ac.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, ac)
	}
	return checkedEntry
}

func (ac *AsyncCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	select {
	case ac.writer.entries <- logEntry{core: ac.core, entry: entry, fields: fields}:
	default:
		ac.writer.dropped.Add(1)
	}
	return nil
}

// Sync drains the queue, stops the writer and syncs the wrapped core. Entries written
// after Sync are dropped.
func (ac *AsyncCore) Sync() error {
	ac.writer.stopOnce.Do(func() {
		close(ac.writer.quit)
	})
	ac.writer.wg.Wait()
	return ac.core.Sync()
}
