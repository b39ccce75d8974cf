package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/debridement/core"
	"github.com/signalsfoundry/debridement/internal/logging"
	"github.com/signalsfoundry/debridement/internal/observability"
)

// MetricsRecorder receives per-pass counts. It is a reporting side channel and
// never influences what gets deleted.
type MetricsRecorder interface {
	RecordPass(candidates, deleted map[string]int, queued, failed int, d time.Duration)
	RecordSkippedPass()
	RecordTrigger(action string, accepted bool)
	RecordSalvage(n int)
}

// PassResult summarises one cleanup pass.
type PassResult struct {
	PassID string
	// Skipped is set when the world was not ready; nothing else is filled in.
	Skipped bool

	LandedCandidates int
	DecayCandidates  int
	LandedDeleted    int
	DecayDeleted     int
	Failed           int

	// Queued is the pending-deletion set the pass produced.
	Queued   []PendingDeletion
	Duration time.Duration
}

// Scanner runs cleanup passes over a World using a core.Policy.
type Scanner struct {
	policy   *core.Policy
	executor *Executor
	log      logging.Logger
	metrics  MetricsRecorder
	tracer   trace.Tracer
}

// ScannerOption customises Scanner construction.
type ScannerOption func(*Scanner)

// WithMetricsRecorder attaches an optional metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) ScannerOption {
	return func(s *Scanner) {
		s.metrics = m
	}
}

// WithTracer overrides the tracer used for pass spans.
func WithTracer(t trace.Tracer) ScannerOption {
	return func(s *Scanner) {
		s.tracer = t
	}
}

// NewScanner builds a Scanner around policy.
func NewScanner(policy *core.Policy, log logging.Logger, opts ...ScannerOption) *Scanner {
	if log == nil {
		log = logging.Noop()
	}
	s := &Scanner{
		policy:   policy,
		executor: NewExecutor(log),
		log:      log,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = observability.Tracer()
	}
	return s
}

// Policy returns the scanner's policy.
func (s *Scanner) Policy() *core.Policy { return s.policy }

// RunCleanupPass scans every vessel once, queues the eligible ones in
// encounter order and, only after the scan completes, removes them. When the
// world is not ready the pass is skipped and ErrWorldNotReady is returned
// alongside a result with Skipped set.
func (s *Scanner) RunCleanupPass(ctx context.Context, world World) (PassResult, error) {
	ctx, log := logging.WithPassLogger(ctx, s.log)
	passID := logging.PassIDFromContext(ctx)

	if world == nil || !world.Ready() {
		log.Debug(ctx, "world not ready; skipping cleanup pass")
		if s.metrics != nil {
			s.metrics.RecordSkippedPass()
		}
		return PassResult{PassID: passID, Skipped: true}, ErrWorldNotReady
	}

	ctx, span := s.tracer.Start(ctx, "cleanup.pass")
	defer span.End()

	start := time.Now()
	res := PassResult{PassID: passID}

	if !s.policy.Resolve(world) {
		log.Debug(ctx, "home body not available; landed cleanup deferred",
			logging.String("body", s.policy.Config().HomeBody))
	}

	pending := newPendingDeletions()
	for _, v := range world.Vessels() {
		if !v.Unattended() {
			continue
		}
		body, ok := world.Body(v.MainBody)
		if !ok {
			continue
		}

		verdict := s.policy.Classify(v, body)
		switch verdict.Category {
		case core.CategoryLanded:
			res.LandedCandidates++
		case core.CategoryDecay:
			res.DecayCandidates++
		default:
			continue
		}
		if verdict.Eligible {
			pending.add(v.ID, verdict.Category)
		}
	}
	res.Queued = pending.Entries()

	drained := s.executor.Drain(ctx, world, pending)
	res.LandedDeleted = drained.Deleted[core.CategoryLanded]
	res.DecayDeleted = drained.Deleted[core.CategoryDecay]
	res.Failed = drained.Failed
	res.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("cleanup.landed_candidates", res.LandedCandidates),
		attribute.Int("cleanup.decay_candidates", res.DecayCandidates),
		attribute.Int("cleanup.queued", len(res.Queued)),
		attribute.Int("cleanup.landed_deleted", res.LandedDeleted),
		attribute.Int("cleanup.decay_deleted", res.DecayDeleted),
		attribute.Int("cleanup.failed", res.Failed),
	)

	if res.DecayDeleted > 0 {
		log.Info(ctx, "removed debris orbiting in-atmosphere", logging.Int("count", res.DecayDeleted))
	}
	if res.LandedDeleted > 0 {
		log.Info(ctx, "removed landed debris",
			logging.Int("count", res.LandedDeleted),
			logging.String("body", s.policy.Config().HomeBody))
	}

	if s.metrics != nil {
		s.metrics.RecordPass(
			map[string]int{
				core.CategoryLanded.String(): res.LandedCandidates,
				core.CategoryDecay.String():  res.DecayCandidates,
			},
			map[string]int{
				core.CategoryLanded.String(): res.LandedDeleted,
				core.CategoryDecay.String():  res.DecayDeleted,
			},
			len(res.Queued), res.Failed, res.Duration,
		)
	}
	return res, nil
}

// Report returns a diagnostic projection for every debris vessel that falls
// under either heuristic. Loaded debris is included so the operator can see
// it, but is never reported as eligible.
func (s *Scanner) Report(ctx context.Context, world World) ([]core.Projection, error) {
	if world == nil || !world.Ready() {
		return nil, ErrWorldNotReady
	}
	s.policy.Resolve(world)

	var out []core.Projection
	for _, v := range world.Vessels() {
		body, ok := world.Body(v.MainBody)
		if !ok {
			continue
		}
		proj := s.policy.Project(v, body)
		if proj.Category == core.CategoryNone && v.IsDebris() && v.Loaded {
			unloaded := v
			unloaded.Loaded = false
			proj = s.policy.Project(unloaded, body)
			proj.Eligible = false
		}
		if proj.Category == core.CategoryNone {
			continue
		}
		out = append(out, proj)
	}
	return out, nil
}

// LogReport writes one line per projection.
func (s *Scanner) LogReport(ctx context.Context, projections []core.Projection) {
	for _, p := range projections {
		fields := []logging.Field{
			logging.String("vessel_id", p.VesselID),
			logging.String("vessel", p.VesselName),
			logging.String("category", p.Category.String()),
			logging.Bool("eligible", p.Eligible),
			logging.String("time_left_hours", formatHours(p.TimeLeft)),
		}
		switch p.Category {
		case core.CategoryLanded:
			fields = append(fields,
				logging.Bool("geometry_known", p.GeometryKnown),
				logging.String("distance_factor", fmt.Sprintf("%.2f", p.DistanceFactor)),
				logging.String("distance_m", fmt.Sprintf("%.2f", p.Distance)),
			)
		case core.CategoryDecay:
			fields = append(fields,
				logging.Float64("total_atmosphere_seconds", p.TotalAtmosphereSeconds),
				logging.Float64("atmosphere_seconds_per_orbit", p.AtmosphereSecondsPerOrbit),
			)
		}
		s.log.Info(ctx, "debris projection", fields...)
	}
}

func formatHours(seconds float64) string {
	return fmt.Sprintf("%.2f", seconds/3600.0)
}
