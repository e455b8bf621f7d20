package game

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs delayed work. Store uses it for every timed effect so tests
// can control time.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler uses wall-clock timers.
var RealScheduler Scheduler = realScheduler{}

// ManualScheduler fires callbacks only when Advance moves its clock.
type ManualScheduler struct {
	lock    sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	due     time.Duration
	seq     int
	f       func()
	stopped bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.seq++
	t := &manualTimer{s: m, due: m.now + d, seq: m.seq, f: f}
	m.pending = append(m.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.lock.Lock()
	defer t.s.lock.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	for i, p := range t.s.pending {
		if p == t {
			t.s.pending = append(t.s.pending[:i], t.s.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves the clock forward and runs every callback that became due,
// in due order, on the calling goroutine.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.lock.Lock()
	m.now += d
	now := m.now
	m.lock.Unlock()

	for {
		m.lock.Lock()
		sort.SliceStable(m.pending, func(i, j int) bool {
			if m.pending[i].due != m.pending[j].due {
				return m.pending[i].due < m.pending[j].due
			}
			return m.pending[i].seq < m.pending[j].seq
		})
		if len(m.pending) == 0 || m.pending[0].due > now {
			m.lock.Unlock()
			return
		}
		t := m.pending[0]
		m.pending = m.pending[1:]
		t.stopped = true
		m.lock.Unlock()
		t.f()
	}
}

// Pending returns the number of callbacks not yet fired.
func (m *ManualScheduler) Pending() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.pending)
}
