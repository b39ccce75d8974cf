package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/debridement/internal/cleanup"
	"github.com/signalsfoundry/debridement/internal/config"
	"github.com/signalsfoundry/debridement/internal/logging"
	"github.com/signalsfoundry/debridement/internal/observability"
	"github.com/signalsfoundry/debridement/kb"
	"github.com/signalsfoundry/debridement/timectrl"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run scheduled cleanup passes over a scenario world",
		Long: "run loads the scenario, advances simulation time and removes eligible debris every interval.\n" +
			"SIGUSR1 requests an immediate pass, SIGUSR2 logs a diagnostic report, and SIGHUP reloads " +
			"the scenario as a new world session.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd.Context())
		},
	}
	flags := cmd.Flags()
	flags.String("metrics-addr", "", "HTTP address for Prometheus /metrics")
	flags.Bool("metrics", true, "serve Prometheus metrics")
	flags.Duration("interval", 0, "time between cleanup passes")
	flags.Int("warp", 0, "simulation seconds per wall-clock second")
	return cmd
}

func runDaemon(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.TracingSettings(), log)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	var scannerOpts []cleanup.ScannerOption
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		collector, err := observability.NewCleanupCollector(nil)
		if err != nil {
			return err
		}
		scannerOpts = append(scannerOpts, cleanup.WithMetricsRecorder(collector))
		metricsSrv = serveMetrics(cfg.Metrics.Addr, collector, log)
	}

	world, sum, err := loadWorld(ctx, cfg.Scenario, log)
	if err != nil {
		return err
	}
	scanner, err := newScanner(cfg, log, scannerOpts...)
	if err != nil {
		return err
	}
	sched := cleanup.NewScheduler(scanner, world, log)

	unsubscribe := world.Subscribe(func(e kb.Event) {
		if e.Type == kb.EventVesselRemoved {
			log.Debug(ctx, "vessel removed",
				logging.String("vessel_id", e.Vessel.ID),
				logging.String("vessel", e.Vessel.Name),
				logging.String("body", e.Vessel.MainBody),
			)
		}
	})
	defer unsubscribe()

	clock := startClock(ctx, cfg, world, sum, log)

	sched.Start(ctx)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGHUP)
	defer signal.Stop(sigs)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case sig := <-sigs:
			switch sig {
			case syscall.SIGUSR1:
				sched.Trigger(cleanup.ActionPass)
			case syscall.SIGUSR2:
				sched.Trigger(cleanup.ActionReport)
			case syscall.SIGHUP:
				if err := reloadWorld(ctx, cfg, world, sched, log); err != nil {
					log.Error(ctx, "scenario reload failed", logging.Err(err))
				}
			}
		}
	}

	log.Info(context.Background(), "shutting down cleanup scheduler")
	sched.Stop()
	<-clock

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}

// startClock advances the world's simulation time until ctx is cancelled.
func startClock(ctx context.Context, cfg config.Config, world *kb.KnowledgeBase, sum kb.ScenarioSummary, log logging.Logger) <-chan struct{} {
	tc := timectrl.NewTimeController(sum.Epoch, cfg.Clock.Tick, cfg.ClockMode(), cfg.Clock.Warp)
	tc.AddListener(func(simTime time.Time, dt time.Duration) {
		if err := world.Advance(simTime, dt); err != nil {
			log.Warn(ctx, "world advance failed", logging.Err(err))
		}
	})
	log.Info(ctx, "simulation clock started",
		logging.String("epoch", sum.Epoch.Format(time.RFC3339)),
		logging.Duration("tick", cfg.Clock.Tick),
		logging.String("mode", cfg.ClockMode().String()),
	)
	return tc.Start(ctx, 0)
}

// reloadWorld starts a new world session: the scheduler is reset, the world
// cleared and the scenario loaded again. The scheduler is restarted even when
// loading fails; it skips passes while the world is not ready.
func reloadWorld(ctx context.Context, cfg config.Config, world *kb.KnowledgeBase, sched *cleanup.Scheduler, log logging.Logger) error {
	sched.Reset()
	world.Clear()
	defer sched.Start(ctx)

	f, err := os.Open(cfg.Scenario)
	if err != nil {
		return err
	}
	defer f.Close()

	sum, err := kb.LoadScenario(world, f)
	if err != nil {
		return err
	}
	log.Info(ctx, "reloaded scenario",
		logging.String("path", cfg.Scenario),
		logging.Int("vessels", sum.Vessels),
	)
	return nil
}

func serveMetrics(addr string, collector *observability.CleanupCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
