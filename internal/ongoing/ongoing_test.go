package ongoing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id    string
	valid bool
}

func (it *item) IsValid() bool { return it.valid }

func keyBytes(k string) []byte { return []byte(k) }

func newTestOngoing() *Ongoing[string, *item] {
	return New[string, *item](keyBytes)
}

func TestOngoing_AddThenRemove(t *testing.T) {
	o := newTestOngoing()
	o.Add("job-1", &item{id: "a", valid: true})
	assert.Equal(t, 1, o.Len())

	got, ok := o.Remove("job-1")
	require.True(t, ok)
	assert.Equal(t, "a", got.id)
	assert.Equal(t, 0, o.Len())
}

func TestOngoing_RemoveMissingKeyReturnsFalse(t *testing.T) {
	o := newTestOngoing()
	_, ok := o.Remove("missing")
	assert.False(t, ok)
}

func TestOngoing_RemoveIsOneShot(t *testing.T) {
	o := newTestOngoing()
	o.Add("job-1", &item{id: "a", valid: true})
	_, ok := o.Remove("job-1")
	require.True(t, ok)
	_, ok = o.Remove("job-1")
	assert.False(t, ok, "a second remove of the same key finds nothing")
}

func TestOngoing_Len(t *testing.T) {
	o := newTestOngoing()
	o.Add("job-1", &item{id: "a", valid: true})
	o.Add("job-2", &item{id: "b", valid: true})
	o.Add("job-3", &item{id: "c", valid: true})
	assert.Equal(t, 3, o.Len())
}

func TestOngoing_RunGC_SweepsInvalidEntries(t *testing.T) {
	o := newTestOngoing()
	o.Add("job-1", &item{id: "dead", valid: false})
	o.Add("job-2", &item{id: "alive", valid: true})
	require.Equal(t, 2, o.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go o.RunGC(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return o.Len() == 1
	}, time.Second, 5*time.Millisecond)

	got, ok := o.Remove("job-2")
	require.True(t, ok)
	assert.Equal(t, "alive", got.id)
}

func TestOngoing_RunGC_StopsOnContextDone(t *testing.T) {
	o := newTestOngoing()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.RunGC(ctx, 0)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunGC did not return after context cancellation")
	}
}
