// Package command implements the FIFO through which the UI worker and the
// core worker exchange tagged commands.
//
// Both workers read from the same queue. A worker only ever consumes
// commands addressed to its side, and the head of the queue is not removed
// until the worker serving it calls Pop, so the two workers strictly take
// turns.
package command

import "sync"

// Command is an opcode with its string arguments.
type Command struct {
	Op   Opcode
	Args []string
}

// Arg returns argument n (0-based), or "" when absent.
func (c Command) Arg(n int) string {
	if n < 0 || n >= len(c.Args) {
		return ""
	}
	return c.Args[n]
}

// Channel is a mutex and condition variable guarded command queue.
// The zero value is not usable; call NewChannel.
type Channel struct {
	mu     sync.Mutex
	ready  *sync.Cond
	queue  []Command
	served bool // the head was returned by Peek and awaits Pop
}

func NewChannel() *Channel {
	ch := &Channel{}
	ch.ready = sync.NewCond(&ch.mu)
	return ch
}

// PushBack appends a command at the end of the queue.
func (ch *Channel) PushBack(op Opcode, args ...string) {
	c := Command{Op: op, Args: append([]string(nil), args...)}

	ch.mu.Lock()
	ch.queue = append(ch.queue, c)
	ch.mu.Unlock()
	ch.ready.Broadcast()
}

// PushFront puts an argument-less command at the head of the queue. It is
// reserved for urgent shutdown requests. A head that is being served stays
// in place and the command goes right behind it.
func (ch *Channel) PushFront(op Opcode) {
	ch.mu.Lock()
	at := 0
	if ch.served && len(ch.queue) > 0 {
		at = 1
	}
	ch.queue = append(ch.queue, Command{})
	copy(ch.queue[at+1:], ch.queue[at:])
	ch.queue[at] = Command{Op: op}
	ch.mu.Unlock()
	ch.ready.Broadcast()
}

// Peek blocks until the head of the queue is addressed to side and returns
// it without removing it.
func (ch *Channel) Peek(side Side) Command {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	ch.waitFor(side)
	ch.served = true
	return ch.queue[0]
}

// PeekOpcode is Peek reduced to the opcode.
func (ch *Channel) PeekOpcode(side Side) Opcode {
	return ch.Peek(side).Op
}

// Arg returns argument n of the head command, or "" when the queue is
// empty or the argument is absent. It does not block.
func (ch *Channel) Arg(n int) string {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if len(ch.queue) == 0 {
		return ""
	}
	return ch.queue[0].Arg(n)
}

// Pop removes the head command together with its arguments.
func (ch *Channel) Pop() {
	ch.mu.Lock()
	ch.served = false
	if len(ch.queue) > 0 {
		ch.queue[0] = Command{}
		ch.queue = ch.queue[1:]
	}
	ch.mu.Unlock()
	ch.ready.Broadcast()
}

// Take blocks until the head is addressed to side, then removes and
// returns it.
func (ch *Channel) Take(side Side) Command {
	ch.mu.Lock()
	ch.waitFor(side)
	c := ch.queue[0]
	ch.queue[0] = Command{}
	ch.queue = ch.queue[1:]
	ch.mu.Unlock()
	ch.ready.Broadcast()
	return c
}

// Len returns the number of queued commands.
func (ch *Channel) Len() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return len(ch.queue)
}

// waitFor must be called with mu held.
func (ch *Channel) waitFor(side Side) {
	for len(ch.queue) == 0 || ch.queue[0].Op.Side() != side {
		ch.ready.Wait()
	}
}
