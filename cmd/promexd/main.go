// Command promexd is the metrics exporter daemon. It loads metric
// declarations from YAML, serves them on a Prometheus exposition
// endpoint, and optionally pushes snapshots to a Pushgateway on a
// cron schedule.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/maxdrift/promex/internal/observability/logging"
	"github.com/maxdrift/promex/internal/observability/metrics"
	"github.com/maxdrift/promex/internal/server"
	"github.com/maxdrift/promex/pkg/config"
	"github.com/maxdrift/promex/pkg/promex"
	"github.com/maxdrift/promex/pkg/push"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("daemon exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := newRegistry()

	self, err := metrics.NewSelf(reg)
	if err != nil {
		return err
	}

	if err := loadDeclarations(logger, reg, self); err != nil {
		return err
	}

	pusher, scheduler, err := initPush(logger, reg, self)
	if err != nil {
		return err
	}

	srvCfg := server.Config{
		Addr: config.GetEnvString("LISTEN_ADDR", ":9090"),
	}
	if pusher != nil {
		srvCfg.PushHealth = pusher.Health
	}
	srv := server.New(srvCfg, reg, self, logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(ctx)
	})

	if scheduler != nil {
		g.Go(func() error {
			scheduler.Start()
			<-ctx.Done()
			scheduler.Stop()
			return nil
		})
	}

	logger.Info("daemon started",
		slog.String("listen_addr", srvCfg.Addr),
		slog.Bool("push_enabled", pusher != nil))

	return g.Wait()
}

// newRegistry builds the shared registry, attaching the runtime
// collectors unless disabled via environment.
func newRegistry() *promex.Registry {
	var opts []promex.Option
	if config.GetEnvBool("GO_COLLECTOR", true) {
		opts = append(opts, promex.WithGoCollector())
	}
	if config.GetEnvBool("PROCESS_COLLECTOR", true) {
		opts = append(opts, promex.WithProcessCollector())
	}
	return promex.NewRegistry(opts...)
}

// loadDeclarations applies every declaration file named in the
// DECLARATIONS environment variable (comma separated paths).
func loadDeclarations(logger *slog.Logger, reg *promex.Registry, self *metrics.Self) error {
	paths := config.GetEnvString("DECLARATIONS", "")
	if paths == "" {
		logger.Info("no declaration files configured")
		return nil
	}

	for _, path := range strings.Split(paths, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}

		decls, err := config.LoadDeclarations(path)
		if err != nil {
			return err
		}
		if err := decls.Apply(reg); err != nil {
			return err
		}
		logger.Info("declarations applied", slog.String("path", path))
	}

	self.SetDeclaredMetrics(len(reg.Names()))
	return nil
}

// initPush builds the Pushgateway pusher and its scheduler when
// PUSH_ENABLED is set. Delivery outcomes feed the self-metrics.
func initPush(logger *slog.Logger, reg *promex.Registry, self *metrics.Self) (*push.Pusher, *push.Scheduler, error) {
	if !config.GetEnvBool("PUSH_ENABLED", false) {
		return nil, nil, nil
	}

	cfg := push.Config{
		URL:       config.GetEnvString("PUSH_URL", "http://localhost:9091"),
		Job:       config.GetEnvString("PUSH_JOB", "promexd"),
		Timeout:   config.GetEnvDuration("PUSH_TIMEOUT", 10*time.Second),
		RateLimit: rate.Limit(config.GetEnvInt("PUSH_RATE_LIMIT", 0)),
		Observer:  self.RecordPush,
	}
	if instance := config.GetEnvString("PUSH_INSTANCE", ""); instance != "" {
		cfg.Grouping = map[string]string{"instance": instance}
	}

	pusher, err := push.New(reg.Gatherer(), cfg)
	if err != nil {
		return nil, nil, err
	}

	schedule := config.GetEnvString("PUSH_SCHEDULE", "@every 15s")
	scheduler, err := push.NewScheduler(pusher, schedule, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("push delivery configured",
		slog.String("url", cfg.URL),
		slog.String("job", cfg.Job),
		slog.String("schedule", schedule))

	return pusher, scheduler, nil
}
