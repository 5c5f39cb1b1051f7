package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/facades/internal/adapters/watcher"
	"go.trai.ch/facades/internal/core/ports"
)

func write(path string) ports.WatchEvent {
	return ports.WatchEvent{Path: path, Operation: ports.OpWrite}
}

func TestDebouncer_Add_SingleEvent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int
		var received []ports.WatchEvent

		d := watcher.NewDebouncer(100*time.Millisecond, func(events []ports.WatchEvent) {
			callCount++
			received = events
		})

		d.Add(write("/project/src/app/Main.kt"))

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Equal(t, 1, callCount)
		assert.Equal(t, []ports.WatchEvent{write("/project/src/app/Main.kt")}, received)
	})
}

func TestDebouncer_Add_CoalescedAndOrdered(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int
		var received []ports.WatchEvent

		d := watcher.NewDebouncer(100*time.Millisecond, func(events []ports.WatchEvent) {
			callCount++
			received = events
		})

		d.Add(write("/project/src/c.kt"))
		d.Add(write("/project/src/a.kt"))
		d.Add(write("/project/src/b.kt"))

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Equal(t, 1, callCount)
		assert.Equal(t, []ports.WatchEvent{
			write("/project/src/a.kt"),
			write("/project/src/b.kt"),
			write("/project/src/c.kt"),
		}, received)
	})
}

func TestDebouncer_Add_LastOperationWins(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var received []ports.WatchEvent

		d := watcher.NewDebouncer(100*time.Millisecond, func(events []ports.WatchEvent) {
			received = events
		})

		d.Add(write("/project/src/a.kt"))
		d.Add(write("/project/src/a.kt"))
		d.Add(ports.WatchEvent{Path: "/project/src/a.kt", Operation: ports.OpRemove})

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, []ports.WatchEvent{{Path: "/project/src/a.kt", Operation: ports.OpRemove}}, received)
	})
}

func TestDebouncer_Add_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int
		var mu sync.Mutex

		d := watcher.NewDebouncer(100*time.Millisecond, func([]ports.WatchEvent) {
			mu.Lock()
			callCount++
			mu.Unlock()
		})

		d.Add(write("/project/src/a.kt"))
		time.Sleep(50 * time.Millisecond)

		d.Add(write("/project/src/b.kt"))
		time.Sleep(50 * time.Millisecond)

		synctest.Wait()
		mu.Lock()
		count := callCount
		mu.Unlock()
		assert.Equal(t, 0, count)

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		count = callCount
		mu.Unlock()
		require.Equal(t, 1, count)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int
		var received []ports.WatchEvent

		d := watcher.NewDebouncer(100*time.Millisecond, func(events []ports.WatchEvent) {
			callCount++
			received = events
		})

		d.Add(write("/project/src/a.kt"))
		d.Add(write("/project/src/b.kt"))
		d.Flush()

		require.Equal(t, 1, callCount)
		require.Len(t, received, 2)

		// The stopped timer must not deliver a second batch.
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 1, callCount)
	})
}

func TestDebouncer_Flush_Empty(t *testing.T) {
	var callCount int

	d := watcher.NewDebouncer(100*time.Millisecond, func([]ports.WatchEvent) {
		callCount++
	})

	d.Flush()

	assert.Equal(t, 0, callCount)
}

func TestDebouncer_Flush_AfterFire(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int

		d := watcher.NewDebouncer(50*time.Millisecond, func([]ports.WatchEvent) {
			callCount++
		})

		d.Add(write("/project/src/a.kt"))

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		require.Equal(t, 1, callCount)

		d.Flush()
		assert.Equal(t, 1, callCount)
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(50*time.Millisecond, nil)

		d.Add(write("/project/src/a.kt"))
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		d.Add(write("/project/src/b.kt"))
		d.Flush()
	})
}
