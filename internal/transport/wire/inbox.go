package wire

import (
	"context"
	"errors"
	"sync"

	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
)

// ErrClosed reports that the host connection closed.
var ErrClosed = errors.New("wire: connection closed")

// Inbox is the event queue between a connection's reader goroutine and the
// prompt loop. It implements prompt.EventSource and prompt.Requeuer; once
// closed, queued events are still delivered before the close error.
type Inbox struct {
	events chan prompt.Event
	done   chan struct{}

	once sync.Once
	err  error

	mu    sync.Mutex
	front []prompt.Event
}

// NewInbox creates an inbox holding up to buffer undelivered events.
func NewInbox(buffer int) *Inbox {
	return &Inbox{
		events: make(chan prompt.Event, buffer),
		done:   make(chan struct{}),
	}
}

// Push queues an event, blocking while the buffer is full. It returns
// false if the inbox was closed meanwhile.
func (in *Inbox) Push(ev prompt.Event) bool {
	select {
	case <-in.done:
		return false
	default:
	}

	select {
	case in.events <- ev:
		return true
	case <-in.done:
		return false
	}
}

// Close ends the stream with err (ErrClosed when nil).
func (in *Inbox) Close(err error) {
	in.once.Do(func() {
		if err == nil {
			err = ErrClosed
		}
		in.err = err
		close(in.done)
	})
}

// Requeue puts ev back at the head of the queue.
func (in *Inbox) Requeue(ev prompt.Event) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.front = append(in.front, ev)
}

func (in *Inbox) popFront() (prompt.Event, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	n := len(in.front)
	if n == 0 {
		return prompt.Event{}, false
	}
	ev := in.front[n-1]
	in.front = in.front[:n-1]
	return ev, true
}

// Next implements prompt.EventSource.
func (in *Inbox) Next(ctx context.Context) (prompt.Event, error) {
	if ev, ok := in.popFront(); ok {
		return ev, nil
	}

	select {
	case ev := <-in.events:
		return ev, nil
	default:
	}

	select {
	case ev := <-in.events:
		return ev, nil
	case <-in.done:
		select {
		case ev := <-in.events:
			return ev, nil
		default:
			return prompt.Event{}, in.err
		}
	case <-ctx.Done():
		return prompt.Event{}, ctx.Err()
	}
}
