package util

import "sync"

// Queue is just a basic FIFO container that automatically removes the oldest element
// whenever it becomes full.
type Queue struct {
	data    []string
	maxSize int
	mu      sync.RWMutex
}

func NewQueue(maxSize int) *Queue {
	return &Queue{
		data:    make([]string, 0),
		maxSize: maxSize,
	}
}

func (q *Queue) Push(item string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.data = append(q.data, item)
	if len(q.data) > q.maxSize {
		q.data = q.data[1:]
	}
}

// Items returns a copy of the queued elements, oldest first.
func (q *Queue) Items() []string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	items := make([]string, len(q.data))
	copy(items, q.data)
	return items
}
