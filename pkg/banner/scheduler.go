package banner

import (
	"sync"
	"time"
)

// Scheduler runs fn every d until the returned cancel function is called.
// Cancel must be safe to call more than once.
type Scheduler interface {
	Every(d time.Duration, fn func()) (cancel func())
}

type TickerScheduler struct{}

func (TickerScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

type fakeTimer struct {
	interval  time.Duration
	fn        func()
	cancelled bool
}

// FakeScheduler records timers instead of running them. Tick fires every live
// timer once.
type FakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

func (f *FakeScheduler) Every(d time.Duration, fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{interval: d, fn: fn}
	f.timers = append(f.timers, t)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		t.cancelled = true
	}
}

// Active returns the number of timers not yet cancelled.
func (f *FakeScheduler) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Started returns how many timers were ever created.
func (f *FakeScheduler) Started() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

// Interval returns the interval of the most recent timer, or 0.
func (f *FakeScheduler) Interval() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.timers) == 0 {
		return 0
	}
	return f.timers[len(f.timers)-1].interval
}

func (f *FakeScheduler) Tick() {
	f.mu.Lock()
	var fns []func()
	for _, t := range f.timers {
		if !t.cancelled {
			fns = append(fns, t.fn)
		}
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
