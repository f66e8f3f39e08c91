package negotiation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
)

func TestCommandQueueFIFO(t *testing.T) {
	q := NewCommandQueue()

	_, ok := q.Dequeue()
	assert.False(t, ok, "empty queue should report no command")

	q.Enqueue(domainNegotiation.CancelCommand{ID: "n1"})
	q.Enqueue(domainNegotiation.DeclineCommand{ID: "n2", Reason: "no deal"})
	assert.Equal(t, 2, q.Len())

	first, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "n1", first.NegotiationID())

	second, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "n2", second.NegotiationID())
	assert.IsType(t, domainNegotiation.DeclineCommand{}, second)

	_, ok = q.Dequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestCommandQueueConcurrentEnqueue(t *testing.T) {
	q := NewCommandQueue()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q.Enqueue(domainNegotiation.CancelCommand{ID: fmt.Sprintf("n%d", i)})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, q.Len())
	seen := map[string]bool{}
	for {
		cmd, ok := q.Dequeue()
		if !ok {
			break
		}
		assert.False(t, seen[cmd.NegotiationID()], "duplicate command %s", cmd.NegotiationID())
		seen[cmd.NegotiationID()] = true
	}
	assert.Len(t, seen, 50)
}
