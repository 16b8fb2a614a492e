package hub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// item is a minimal Valid implementation for exercising the Hub generically.
type item struct {
	id    string
	valid bool
}

func (it *item) IsValid() bool { return it.valid }

func keyBytes(k string) []byte { return []byte(k) }

func newTestHub() *Hub[string, *item] {
	return New[string, *item](keyBytes)
}

// ============================================================================
// FIFO ORDERING
// ============================================================================

func TestHub_AcquireReturnsItemsInFifoOrder(t *testing.T) {
	h := newTestHub()
	h.Submit("sel-1", &item{id: "a", valid: true})
	h.Submit("sel-1", &item{id: "b", valid: true})
	h.Submit("sel-1", &item{id: "c", valid: true})

	ctx := context.Background()
	for _, want := range []string{"a", "b", "c"} {
		got, ok := h.Acquire(ctx, "sel-1")
		require.True(t, ok)
		assert.Equal(t, want, got.id)
	}
}

func TestHub_DifferentSelectorsDoNotInterfere(t *testing.T) {
	h := newTestHub()
	h.Submit("sel-1", &item{id: "a", valid: true})
	h.Submit("sel-2", &item{id: "b", valid: true})

	got, ok := h.Acquire(context.Background(), "sel-2")
	require.True(t, ok)
	assert.Equal(t, "b", got.id)
}

// ============================================================================
// BLOCKING ACQUIRE / CONTEXT CANCELLATION
// ============================================================================

func TestHub_AcquireBlocksUntilSubmit(t *testing.T) {
	h := newTestHub()
	done := make(chan *item, 1)
	go func() {
		got, ok := h.Acquire(context.Background(), "sel-1")
		if ok {
			done <- got
		} else {
			done <- nil
		}
	}()

	time.Sleep(20 * time.Millisecond) // give the goroutine a chance to park
	h.Submit("sel-1", &item{id: "a", valid: true})

	select {
	case got := <-done:
		require.NotNil(t, got)
		assert.Equal(t, "a", got.id)
	case <-time.After(2 * time.Second):
		t.Fatal("acquire never returned after submit")
	}
}

func TestHub_AcquireReturnsFalseWhenContextCancelled(t *testing.T) {
	h := newTestHub()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok := h.Acquire(ctx, "sel-empty")
	assert.False(t, ok)
}

// ============================================================================
// LIVENESS FILTERING
// ============================================================================

func TestHub_AcquireSkipsInvalidEntriesTransparently(t *testing.T) {
	h := newTestHub()
	h.Submit("sel-1", &item{id: "dead", valid: false})
	h.Submit("sel-1", &item{id: "alive", valid: true})

	got, ok := h.Acquire(context.Background(), "sel-1")
	require.True(t, ok)
	assert.Equal(t, "alive", got.id, "invalid entries are skipped, not returned")
}

// ============================================================================
// CAPACITY BOUND
// ============================================================================

func TestHub_SubmitDropsSilentlyPastCapacity(t *testing.T) {
	h := newTestHub()
	for i := 0; i < maxItems+10; i++ {
		h.Submit("sel-1", &item{id: "x", valid: true})
	}
	assert.Equal(t, maxItems, h.Depth())
}

// ============================================================================
// GC
// ============================================================================

func TestHub_RunGC_SweepsInvalidEntries(t *testing.T) {
	h := newTestHub()
	h.Submit("sel-1", &item{id: "dead", valid: false})
	require.Equal(t, 1, h.Depth())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.RunGC(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return h.Depth() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestHub_RunGC_DefaultsIntervalWhenZero(t *testing.T) {
	h := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.RunGC(ctx, 0)
	}()
	cancel()
	wg.Wait() // must return promptly once ctx is done, regardless of interval
}

// ============================================================================
// DEPTH
// ============================================================================

func TestHub_Depth(t *testing.T) {
	h := newTestHub()
	assert.Equal(t, 0, h.Depth())
	h.Submit("sel-1", &item{id: "a", valid: true})
	h.Submit("sel-2", &item{id: "b", valid: true})
	assert.Equal(t, 2, h.Depth())
}
