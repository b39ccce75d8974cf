package timectrl

import (
	"context"
	"sync"
	"time"
)

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances according to wall-clock time.
	RealTime Mode = iota
	// Accelerated advances Warp ticks of simulation time per wall-clock tick.
	Accelerated
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == Accelerated {
		return "accelerated"
	}
	return "real-time"
}

// Listener is invoked after every tick with the new simulation time and the
// amount of simulation time that elapsed.
type Listener func(simTime time.Time, dt time.Duration)

// TimeController drives simulation time and notifies registered listeners.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode
	// Warp multiplies simulation time per tick in Accelerated mode.
	Warp int

	currentTime time.Time

	listeners []Listener
}

// NewTimeController constructs a controller. A warp below one is treated as one.
func NewTimeController(start time.Time, tick time.Duration, mode Mode, warp int) *TimeController {
	if warp < 1 {
		warp = 1
	}
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		Warp:        warp,
		currentTime: start,
	}
}

// Now returns the current simulation time.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime jumps simulation time without notifying listeners.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = t
}

// AddListener registers a callback invoked on every tick.
func (tc *TimeController) AddListener(fn Listener) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// step returns how much simulation time passes per wall-clock tick.
func (tc *TimeController) step() time.Duration {
	if tc.Mode == Accelerated {
		return tc.Tick * time.Duration(tc.Warp)
	}
	return tc.Tick
}

// Advance moves simulation time forward by one tick and notifies listeners.
func (tc *TimeController) Advance() time.Time {
	dt := tc.step()

	tc.mu.Lock()
	tc.currentTime = tc.currentTime.Add(dt)
	simTime := tc.currentTime
	listeners := append([]Listener(nil), tc.listeners...)
	tc.mu.Unlock()

	for _, fn := range listeners {
		fn(simTime, dt)
	}
	return simTime
}

// Start runs the controller in a separate goroutine until ctx is cancelled or
// duration of simulation time has elapsed (duration <= 0 runs forever). It
// returns a channel that is closed when the controller finishes.
func (tc *TimeController) Start(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		elapsed := time.Duration(0)

		// In both modes we use a ticker for simplicity and determinism.
		ticker := time.NewTicker(tc.Tick)
		defer ticker.Stop()

		for {
			if duration > 0 && elapsed >= duration {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			tc.Advance()
			elapsed += tc.step()
		}
	}()
	return done
}
