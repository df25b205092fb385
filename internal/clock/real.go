package clock

import (
	"sync"
	"time"
)

// Real is the wall-clock [Clock].
type Real struct{}

// NewReal returns the wall-clock Clock.
func NewReal() *Real {
	return &Real{}
}

func (r *Real) Now() time.Time {
	return time.Now()
}

// Every starts a goroutine delivering ticks from a [time.Ticker]. The goroutine exits once the Ticker is stopped.
func (r *Real) Every(interval time.Duration, onTick func()) Ticker {
	t := &realTicker{
		done: make(chan struct{}),
		once: sync.Once{},
	}
	go t.run(interval, onTick)
	return t
}

type realTicker struct {
	done chan struct{}
	once sync.Once
}

func (t *realTicker) run(interval time.Duration, onTick func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			// Stop may have raced with the tick; prefer the stop.
			select {
			case <-t.done:
				return
			default:
			}
			onTick()
		}
	}
}

func (t *realTicker) Stop() {
	t.once.Do(func() { close(t.done) })
}
