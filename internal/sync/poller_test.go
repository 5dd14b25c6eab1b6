package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	mu    gosync.Mutex
	calls int
	err   error
}

func (l *countingLoader) Load(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.err
}

func (l *countingLoader) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func TestPoller_RefreshAll(t *testing.T) {
	ws := &countingLoader{}
	chat := &countingLoader{err: errors.New("redis: connection refused")}

	p := New(0)
	p.Register("workspace", ws)
	p.Register("chat", chat)

	wait := p.Start()
	defer p.Stop()
	require.NotNil(t, wait)
	assert.Nil(t, p.Start(), "second Start is a no-op")

	p.RefreshAll()

	first, ok := wait().(SyncResultMsg)
	require.True(t, ok)
	assert.Equal(t, "workspace", first.Name)
	assert.NoError(t, first.Error)

	second, ok := p.WaitForNextResult()().(SyncResultMsg)
	require.True(t, ok)
	assert.Equal(t, "chat", second.Name)
	assert.EqualError(t, second.Error, "redis: connection refused")

	statuses := p.GetStatuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, SyncIdle, statuses[0].State)
	assert.False(t, statuses[0].LastSync.IsZero())
	assert.Equal(t, SyncError, statuses[1].State)
	assert.Equal(t, 1, ws.Calls())
}

func TestPoller_Interval(t *testing.T) {
	l := &countingLoader{}
	p := New(10 * time.Millisecond)
	p.Register("workspace", l)

	wait := p.Start()
	defer p.Stop()

	msg, ok := wait().(SyncResultMsg)
	require.True(t, ok)
	assert.Equal(t, "workspace", msg.Name)
	assert.Eventually(t, func() bool { return l.Calls() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestPoller_StopUnblocksWaiters(t *testing.T) {
	p := New(0)
	p.Register("workspace", &countingLoader{})
	wait := p.Start()

	p.Stop()
	p.Stop()
	assert.Nil(t, wait())
}
