package clock

import (
	"sync"
	"time"
)

// Manual is a [Clock] whose time only moves through [Manual.Advance] and [Manual.Tick].
//
// Ticks are delivered synchronously on the goroutine calling Advance, one interval at a time and in deadline
// order. The clock lock is released while onTick runs so callbacks may start and stop tickers.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

type manualTicker struct {
	clock    *Manual
	interval time.Duration
	next     time.Time
	onTick   func()
	stopped  bool
}

// NewManual creates a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{
		mu:      sync.Mutex{},
		now:     start,
		tickers: nil,
	}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Every registers a ticker whose first tick is due one interval from the current time.
func (m *Manual) Every(interval time.Duration, onTick func()) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTicker{
		clock:    m,
		interval: interval,
		next:     m.now.Add(interval),
		onTick:   onTick,
		stopped:  false,
	}
	m.tickers = append(m.tickers, t)
	return t
}

// Advance moves the clock forward by d, firing every tick that becomes due on the way.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		due := m.nextDue(target)
		if due == nil {
			if target.After(m.now) {
				m.now = target
			}
			m.mu.Unlock()
			return
		}
		m.now = due.next
		due.next = due.next.Add(due.interval)
		onTick := due.onTick
		m.mu.Unlock()

		onTick()
	}
}

// Tick advances the clock by one second.
func (m *Manual) Tick() {
	m.Advance(time.Second)
}

// Pending returns the number of tickers that have not been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickers)
}

// nextDue returns the live ticker with the earliest deadline not after target. Ties go to the older ticker.
// Must be called with m.mu held.
func (m *Manual) nextDue(target time.Time) *manualTicker {
	var due *manualTicker
	for _, t := range m.tickers {
		if t.next.After(target) {
			continue
		}
		if due == nil || t.next.Before(due.next) {
			due = t
		}
	}
	return due
}

func (t *manualTicker) Stop() {
	m := t.clock
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	for i, other := range m.tickers {
		if other == t {
			m.tickers = append(m.tickers[:i], m.tickers[i+1:]...)
			break
		}
	}
}
