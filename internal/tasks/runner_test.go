package tasks

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoDeliversResultOnDispatch(t *testing.T) {
	r := NewRunner(4)
	defer r.Close()

	var got int
	var gotErr error
	Go(r, func() (int, error) { return 42, nil }, func(v int, err error) {
		got = v
		gotErr = err
	})

	require.Eventually(t, func() bool { return r.Dispatch() > 0 }, time.Second, time.Millisecond)
	assert.Equal(t, 42, got)
	assert.NoError(t, gotErr)
}

func TestGoDeliversErrors(t *testing.T) {
	r := NewRunner(4)
	defer r.Close()

	wantErr := errors.New("store exploded")
	var gotErr error
	Go(r, func() (string, error) { return "", wantErr }, func(_ string, err error) {
		gotErr = err
	})

	require.Eventually(t, func() bool { return r.Dispatch() > 0 }, time.Second, time.Millisecond)
	assert.ErrorIs(t, gotErr, wantErr)
}

func TestGoRecoversPanics(t *testing.T) {
	r := NewRunner(4)
	defer r.Close()

	var gotErr error
	Go(r, func() (int, error) { panic("boom") }, func(_ int, err error) {
		gotErr = err
	})

	require.Eventually(t, func() bool { return r.Dispatch() > 0 }, time.Second, time.Millisecond)
	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "boom")
}

func TestCompletionsRunSeriallyOnOwnerGoroutine(t *testing.T) {
	r := NewRunner(64)

	const tasks = 20
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(tasks)

	for i := 0; i < tasks; i++ {
		Go(r, func() (int, error) { return i, nil }, func(v int, _ error) {
			// No locking needed for order itself if delivery is serial,
			// but the test asserts from another goroutine.
			mu.Lock()
			order = append(order, v)
			mu.Unlock()
			wg.Done()
		})
	}

	go func() {
		wg.Wait()
		r.Close()
	}()

	// Run owns delivery; it returns once Close drains the queue.
	r.Run()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, order, tasks)
}

func TestCloseIsIdempotent(t *testing.T) {
	r := NewRunner(1)
	Go(r, func() (int, error) { return 1, nil }, func(int, error) {})

	// First Close may drop the undelivered completion; the second must not
	// panic.
	r.Close()
	r.Close()
}

func TestDispatchOnEmptyQueue(t *testing.T) {
	r := NewRunner(1)
	defer r.Close()
	assert.Zero(t, r.Dispatch())
}
