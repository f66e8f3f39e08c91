package negotiation

import (
	"sync"

	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
)

// CommandQueue is the in-process FIFO of pending negotiation commands.
// Not persisted: commands enqueued but not yet drained are lost on
// restart, an accepted trade-off. The owning manager loop drains it in
// submission order.
type CommandQueue struct {
	mu       sync.Mutex
	commands []domainNegotiation.Command
}

func NewCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

// Enqueue appends a command.
func (q *CommandQueue) Enqueue(cmd domainNegotiation.Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.commands = append(q.commands, cmd)
}

// Dequeue pops the oldest command, reporting false when empty.
func (q *CommandQueue) Dequeue() (domainNegotiation.Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.commands) == 0 {
		return nil, false
	}
	cmd := q.commands[0]
	q.commands = q.commands[1:]
	return cmd, true
}

// Len reports the number of pending commands.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}
