package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Subscribe_Unsubscribe(t *testing.T) {
	n := New()

	ch := n.Subscribe("a")
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Listeners("a"))

	n.Unsubscribe("a", ch)

	assert.Zero(t, n.Listeners("a"))
	n.mu.RLock()
	assert.Empty(t, n.topics, "empty topics are dropped")
	n.mu.RUnlock()
}

func TestNotifier_BroadcastReachesOnlyTopic(t *testing.T) {
	n := New()

	a1 := n.Subscribe("a")
	a2 := n.Subscribe("a")
	b := n.Subscribe("b")
	defer n.Unsubscribe("a", a1)
	defer n.Unsubscribe("a", a2)
	defer n.Unsubscribe("b", b)

	n.Broadcast("a")

	for _, ch := range []chan struct{}{a1, a2} {
		select {
		case <-ch:
		case <-time.After(100 * time.Millisecond):
			t.Error("listener did not receive broadcast")
		}
	}

	select {
	case <-b:
		t.Error("other topic received broadcast")
	default:
	}
}

func TestNotifier_Broadcast_NonBlocking(t *testing.T) {
	n := New()

	ch := n.Subscribe("a")
	defer n.Unsubscribe("a", ch)

	ch <- struct{}{}

	done := make(chan bool)
	go func() {
		n.Broadcast("a")
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("Broadcast blocked on full channel")
	}
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	const numGoroutines = 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := n.Subscribe("a")
			n.Broadcast("a")
			n.Unsubscribe("a", ch)
		}()
	}

	wg.Wait()

	assert.Zero(t, n.Listeners("a"))
}
