package cleanup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/signalsfoundry/debridement/core"
	"github.com/signalsfoundry/debridement/internal/logging"
)

// ErrPassInFlight is returned by RunOnce while another pass is running.
var ErrPassInFlight = errors.New("cleanup pass already in flight")

// State is the scheduler's pass state.
type State int32

const (
	StateIdle State = iota
	StateScanning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	default:
		return "unknown"
	}
}

// Action is a manually requested unit of work.
type Action int

const (
	// ActionPass runs a cleanup pass outside the regular interval.
	ActionPass Action = iota
	// ActionReport logs a diagnostic projection of every candidate.
	ActionReport
)

func (a Action) String() string {
	switch a {
	case ActionPass:
		return "pass"
	case ActionReport:
		return "report"
	default:
		return "unknown"
	}
}

// ReportSink receives diagnostic projections produced by ActionReport.
type ReportSink func(ctx context.Context, projections []core.Projection)

// SchedulerOption customises a Scheduler.
type SchedulerOption func(*Scheduler)

// WithReportSink replaces the default sink, which logs each projection.
func WithReportSink(sink ReportSink) SchedulerOption {
	return func(s *Scheduler) {
		if sink != nil {
			s.onReport = sink
		}
	}
}

// WithPassHook registers fn to observe every completed pass, skipped or not.
func WithPassHook(fn func(PassResult)) SchedulerOption {
	return func(s *Scheduler) {
		s.onPass = fn
	}
}

// WithInterval overrides the policy interval.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// Scheduler runs cleanup passes on a fixed interval from a single goroutine.
// Manual triggers are handed to that goroutine, so two passes never overlap.
type Scheduler struct {
	scanner  *Scanner
	world    World
	log      logging.Logger
	interval time.Duration
	onReport ReportSink
	onPass   func(PassResult)

	state    atomic.Int32
	triggers chan Action
	// passMu is held for the whole of a pass and by Reset.
	passMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewScheduler builds a scheduler that runs scanner against world every
// policy interval.
func NewScheduler(scanner *Scanner, world World, log logging.Logger, opts ...SchedulerOption) *Scheduler {
	if log == nil {
		log = logging.Noop()
	}
	s := &Scheduler{
		scanner:  scanner,
		world:    world,
		log:      log,
		interval: scanner.Policy().Config().Interval,
		triggers: make(chan Action, 1),
	}
	s.onReport = func(ctx context.Context, projections []core.Projection) {
		s.scanner.LogReport(ctx, projections)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// State returns the current pass state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Running reports whether the background loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start launches the background loop. The first pass runs immediately. The
// loop exits when ctx is cancelled or Stop is called. Calling Start on a
// running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	s.log.Info(ctx, "cleanup scheduler started", logging.Duration("interval", s.interval))
	go s.run(ctx, stopCh, doneCh)
}

// Stop ends the loop and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Reset prepares the scheduler for a new world session: it stops the loop,
// waits for any pass started through RunOnce, drops a pending trigger and
// clears the cached reference point. Start may be called again afterwards.
func (s *Scheduler) Reset() {
	s.Stop()
	s.passMu.Lock()
	defer s.passMu.Unlock()
drain:
	for {
		select {
		case <-s.triggers:
		default:
			break drain
		}
	}
	s.scanner.Policy().Reset()
}

// Trigger requests action from the loop. It returns false, and the request is
// dropped, while a pass is in flight or another request is already pending.
func (s *Scheduler) Trigger(action Action) bool {
	accepted := false
	if s.State() != StateScanning {
		select {
		case s.triggers <- action:
			accepted = true
		default:
		}
	}
	if m := s.scanner.metrics; m != nil {
		m.RecordTrigger(action.String(), accepted)
	}
	if !accepted {
		s.log.Debug(context.Background(), "manual trigger ignored",
			logging.String("action", action.String()),
			logging.String("state", s.State().String()))
	}
	return accepted
}

// RunOnce runs a single pass synchronously. It returns ErrPassInFlight if the
// loop is mid-pass.
func (s *Scheduler) RunOnce(ctx context.Context) (PassResult, error) {
	if !s.passMu.TryLock() {
		return PassResult{}, ErrPassInFlight
	}
	s.state.Store(int32(StateScanning))
	res, err := s.pass(ctx)
	if s.onPass != nil {
		s.onPass(res)
	}
	return res, err
}

func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		case action := <-s.triggers:
			switch action {
			case ActionReport:
				s.report(ctx)
			default:
				s.tick(ctx)
			}
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrWorldNotReady) {
		s.log.Warn(ctx, "cleanup pass failed", logging.Err(err))
	}
}

func (s *Scheduler) pass(ctx context.Context) (PassResult, error) {
	defer s.passMu.Unlock()
	defer s.state.Store(int32(StateIdle))
	return s.scanner.RunCleanupPass(ctx, s.world)
}

func (s *Scheduler) report(ctx context.Context) {
	s.passMu.Lock()
	defer s.passMu.Unlock()
	projections, err := s.scanner.Report(ctx, s.world)
	if err != nil {
		s.log.Debug(ctx, "diagnostic report skipped", logging.Err(err))
		return
	}
	s.onReport(ctx, projections)
}
