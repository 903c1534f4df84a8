package task

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/evan-idocoding/zrtos/rt/tick"
)

func TestStress_ConcurrentLifecycle_NoLeakNoDeadlock(t *testing.T) {
	// Exercises Start/RequestStop/Delete races across many tasks without relying on timing.
	// It must finish quickly or fail.
	const (
		tasks   = 64
		workers = 4
	)
	slots := semaphore.NewWeighted(tasks)

	var (
		entries atomic.Int64
		deleted atomic.Int64
	)
	done := make(chan error, 1)
	go func() {
		var g errgroup.Group
		for i := 0; i < tasks; i++ {
			i := i
			g.Go(func() error {
				tk, err := New("", func(self *Self, _ any) {
					entries.Add(1)
					for !self.ShouldStop() {
						self.Yield()
					}
				}, nil, testOptions(
					WithSlots(slots),
					WithOnDelete(func(*Task) { deleted.Add(1) }),
				)...)
				if err != nil {
					return err
				}

				// Hammer the same handle from several goroutines.
				var hg errgroup.Group
				for w := 0; w < workers; w++ {
					w := w
					hg.Go(func() error {
						if (i+w)%2 == 0 {
							_ = tk.Start()
						} else {
							tk.RequestStop()
						}
						return nil
					})
				}
				_ = hg.Wait()
				tk.RequestStop()

				for {
					err := tk.Delete(tick.Infinite)
					if err == nil {
						return nil
					}
					if err != ErrJoinTimeout {
						return err
					}
				}
			})
		}
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stress run did not finish (deadlock?)")
	}

	assert.EqualValues(t, tasks, deleted.Load())
	assert.LessOrEqual(t, entries.Load(), int64(tasks))
	assert.True(t, slots.TryAcquire(tasks), "every slot must be returned")
}

func TestStress_DeleteTimeoutRetries_ReleaseOnce(t *testing.T) {
	t.Parallel()

	var deleted atomic.Int64
	tk, err := New("slow-exit", func(self *Self, _ any) {
		<-self.StopRequested()
		time.Sleep(20 * time.Millisecond)
	}, nil, testOptions(WithOnDelete(func(*Task) { deleted.Add(1) }))...)
	require.NoError(t, err)
	require.NoError(t, tk.Start())
	tk.RequestStop()

	var timeouts int
	for {
		err := tk.Delete(1)
		if err == nil {
			break
		}
		require.ErrorIs(t, err, ErrJoinTimeout)
		timeouts++
		require.Less(t, timeouts, 1000)
	}
	assert.Positive(t, timeouts)
	assert.EqualValues(t, 1, deleted.Load())
	assert.ErrorIs(t, tk.Delete(1), ErrDeleted)
}
