package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1, -100} {
		p, err := New(size, nil)
		assert.ErrorIs(t, err, ErrInvalidSize)
		assert.Nil(t, p)
	}
}

func TestSubmitRunsEveryTaskOnce(t *testing.T) {
	p, err := New(3, nil)
	require.NoError(t, err)

	const n = 200
	var (
		mu   sync.Mutex
		seen = make(map[int]int, n)
	)
	for i := 0; i < n; i++ {
		i := i
		require.NoError(t, p.Submit(func() {
			mu.Lock()
			seen[i]++
			mu.Unlock()
		}))
	}
	p.Close()

	assert.Len(t, seen, n)
	for i, count := range seen {
		assert.Equal(t, 1, count, "task %d", i)
	}
	assert.EqualValues(t, n, p.Completed())
}

func TestConcurrencyIsBoundedBySize(t *testing.T) {
	const size = 2
	p, err := New(size, nil)
	require.NoError(t, err)

	var running, peak atomic.Int32
	for i := 0; i < 20; i++ {
		require.NoError(t, p.Submit(func() {
			cur := running.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
		}))
	}
	p.Close()

	assert.LessOrEqual(t, peak.Load(), int32(size))
	assert.Equal(t, size, p.Size())
}

func TestSubmitDoesNotWaitForIdleWorker(t *testing.T) {
	p, err := New(1, nil)
	require.NoError(t, err)

	release := make(chan struct{})
	require.NoError(t, p.Submit(func() { <-release }))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			_ = p.Submit(func() {})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit blocked while the only worker was busy")
	}
	close(release)
	p.Close()
	assert.EqualValues(t, 51, p.Completed())
}

func TestCloseDrainsQueuedTasks(t *testing.T) {
	p, err := New(1, nil)
	require.NoError(t, err)

	gate := make(chan struct{})
	var ran atomic.Int32
	require.NoError(t, p.Submit(func() { <-gate; ran.Add(1) }))
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(func() { ran.Add(1) }))
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(gate)
	}()
	p.Close()

	assert.EqualValues(t, 11, ran.Load())
}

func TestSubmitAfterClose(t *testing.T) {
	p, err := New(2, nil)
	require.NoError(t, err)
	p.Close()
	p.Close()

	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
}

func TestPanickingTaskDoesNotKillWorker(t *testing.T) {
	p, err := New(1, nil)
	require.NoError(t, err)

	var ok atomic.Bool
	require.NoError(t, p.Submit(func() { panic("boom") }))
	require.NoError(t, p.Submit(func() { ok.Store(true) }))
	p.Close()

	assert.True(t, ok.Load())
	assert.EqualValues(t, 2, p.Completed())
}

func TestSubmitNilTask(t *testing.T) {
	p, err := New(1, nil)
	require.NoError(t, err)
	defer p.Close()

	assert.Error(t, p.Submit(nil))
}
