package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/evan-idocoding/zrtos/rt/tick"
)

const testPeriod = time.Millisecond

func TestEvent_NewIsNotSignaled(t *testing.T) {
	t.Parallel()

	ev := New(WithPeriod(testPeriod))
	assert.False(t, ev.IsSet())
	assert.False(t, ev.Wait(0))
}

func TestEvent_Set_BroadcastsToAllWaiters(t *testing.T) {
	t.Parallel()

	ev := New(WithPeriod(testPeriod))

	const waiters = 16
	results := make([]bool, waiters)
	started := make(chan struct{}, waiters)
	var g errgroup.Group
	for i := 0; i < waiters; i++ {
		i := i
		g.Go(func() error {
			started <- struct{}{}
			results[i] = ev.Wait(tick.Infinite)
			return nil
		})
	}
	for i := 0; i < waiters; i++ {
		<-started
	}
	time.Sleep(5 * time.Millisecond)

	ev.Set()
	require.NoError(t, g.Wait())
	for i, ok := range results {
		assert.True(t, ok, "waiter %d", i)
	}
}

func TestEvent_StaysSignaledUntilReset(t *testing.T) {
	t.Parallel()

	ev := New(WithPeriod(testPeriod))
	ev.Set()
	ev.Set() // idempotent

	for i := 0; i < 5; i++ {
		assert.True(t, ev.Wait(1), "wait %d after Set", i)
	}

	ev.Reset()
	ev.Reset() // idempotent
	assert.False(t, ev.IsSet())
	assert.False(t, ev.Wait(0))
}

func TestEvent_AfterReset_TimesOutNotEarlier(t *testing.T) {
	t.Parallel()

	ev := New(WithPeriod(2 * time.Millisecond))
	ev.Set()
	ev.Reset()

	start := time.Now()
	ok := ev.Wait(10)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond, "returned before the timeout elapsed")
}

func TestEvent_Wait_WakesOnSetBeforeTimeout(t *testing.T) {
	t.Parallel()

	ev := New(WithPeriod(10 * time.Millisecond))
	time.AfterFunc(20*time.Millisecond, ev.Set)

	start := time.Now()
	ok := ev.Wait(300)
	elapsed := time.Since(start)

	assert.True(t, ok)
	assert.Less(t, elapsed, time.Second, "must not wait for the full 300-tick timeout")
}

func TestEvent_WaitContext_Canceled(t *testing.T) {
	t.Parallel()

	ev := New(WithPeriod(testPeriod))
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(5*time.Millisecond, cancel)

	ok, err := ev.WaitContext(ctx, tick.Infinite)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvent_WaitContext_TimeoutIsNotAnError(t *testing.T) {
	t.Parallel()

	ev := New(WithPeriod(testPeriod))
	ok, err := ev.WaitContext(context.Background(), 2)
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestEvent_WaitContext_LongPeriodDoesNotTimeOutEarly(t *testing.T) {
	t.Parallel()

	ev := New(WithPeriod(3 * time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ok, err := ev.WaitContext(ctx, tick.Infinite-1)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "the tick timeout must not have fired first")
}

func TestEvent_Done_Generations(t *testing.T) {
	t.Parallel()

	ev := New(WithPeriod(testPeriod))
	first := ev.Done()
	ev.Set()

	select {
	case <-first:
	default:
		t.Fatal("Done channel must be closed after Set")
	}

	ev.Reset()
	second := ev.Done()
	select {
	case <-second:
		t.Fatal("Done channel of a new generation must be open after Reset")
	default:
	}
}

func TestEvent_Destroy(t *testing.T) {
	t.Parallel()

	ev := New(WithPeriod(testPeriod))
	ev.Set()
	ev.Destroy()
	ev.Destroy()

	assert.False(t, ev.IsSet())
	assert.Nil(t, ev.Done())

	start := time.Now()
	assert.False(t, ev.Wait(tick.Infinite), "wait on a destroyed event returns immediately")
	assert.Less(t, time.Since(start), time.Second)

	ev.Set()
	ev.Reset()
	assert.False(t, ev.IsSet())
}
