package fetch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitLong = time.Second
	waitTick = 5 * time.Millisecond
)

func TestLoad_SettlesReady(t *testing.T) {
	l := NewLoader()

	v, err := l.Load(context.Background(), "remedies", "ailment=3", func(context.Context) (any, error) {
		return []string{"ginger"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ginger"}, v)

	r := l.Peek("remedies", "ailment=3")
	assert.Equal(t, StateReady, r.State)
	assert.NoError(t, r.Err)
}

func TestLoad_SettlesFailedAndRetries(t *testing.T) {
	l := NewLoader()
	boom := errors.New("boom")

	_, err := l.Load(context.Background(), "remedies", "", func(context.Context) (any, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, l.Peek("remedies", "").State)

	// A later load retries and can succeed.
	v, err := l.Load(context.Background(), "remedies", "", func(context.Context) (any, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, StateReady, l.Peek("remedies", "").State)
}

func TestLoad_CollapsesConcurrentCallers(t *testing.T) {
	l := NewLoader()
	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Load(context.Background(), "stats", "tab=orders", func(context.Context) (any, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return "ok", nil
			})
		}()
	}

	assert.Eventually(t, func() bool {
		return l.Peek("stats", "tab=orders").State == StateLoading
	}, waitLong, waitTick)
	// Give the remaining callers time to join the in-flight group.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "concurrent loads of one dependency share a single fetch")
}

func TestPeek_UnknownDependencyIsIdle(t *testing.T) {
	l := NewLoader()
	assert.Equal(t, StateIdle, l.Peek("x", "").State)
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	l := NewLoader()
	_, _ = l.Load(context.Background(), "r", "", func(context.Context) (any, error) { return 1, nil })

	l.Invalidate("r", "")
	assert.Equal(t, StateIdle, l.Peek("r", "").State)
}
