package shutdown

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RunsAllHandlersOnce(t *testing.T) {
	m := NewManager(nil)
	var calls atomic.Int32
	m.Register("a", func() { calls.Add(1) })
	m.Register("b", func() { calls.Add(1) })

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestManager_JoinsErrors(t *testing.T) {
	m := NewManager(nil)
	boom := errors.New("boom")
	m.RegisterShutdown("store", func(context.Context) error { return boom })
	m.Register("ok", func() {})

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "store shutdown: boom")
}

func TestManager_HonorsDeadline(t *testing.T) {
	m := NewManager(nil)
	release := make(chan struct{})
	defer close(release)
	m.RegisterShutdown("slow", func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Shutdown(ctx), context.DeadlineExceeded)
}
