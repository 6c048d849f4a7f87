package socket

import "sync"

// Updates exposes the message stream as a bounded channel for consumers
// that poll. The current value is queued first. When the buffer is full
// the oldest pending value is discarded. The returned stop function
// unsubscribes and closes the channel.
func (c *Channel) Updates(buffer int) (<-chan string, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	q := &updateQueue{ch: make(chan string, buffer)}
	id := c.Subscribe(q.push)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			c.Unsubscribe(id)
			q.close()
		})
	}
	return q.ch, stop
}

type updateQueue struct {
	mu     sync.Mutex
	ch     chan string
	closed bool
}

func (q *updateQueue) push(v string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	for {
		select {
		case q.ch <- v:
			return
		default:
		}
		select {
		case <-q.ch:
		default:
		}
	}
}

func (q *updateQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
