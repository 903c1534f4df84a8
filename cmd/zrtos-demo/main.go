// Command zrtos-demo runs two cooperative tasks on a zrtos runtime: A reports the tick count
// periodically, B waits on an event that main sets once. Main then requests both to stop,
// joins them and shuts the runtime down.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/evan-idocoding/zrtos"
	"github.com/evan-idocoding/zrtos/ops"
	"github.com/evan-idocoding/zrtos/rt/safego"
	"github.com/evan-idocoding/zrtos/rt/tick"
)

type options struct {
	Config      string        `long:"config" description:"YAML config file"`
	LogLevel    string        `long:"log-level" description:"log level (overrides config)"`
	LogFormat   string        `long:"log-format" choice:"text" choice:"json" description:"log format (overrides config)"`
	OpsAddr     string        `long:"ops-addr" description:"serve the ops HTTP surface on this address (overrides config)"`
	TickPeriod  time.Duration `long:"tick-period" description:"tick period (overrides config)"`
	PrintConfig bool          `long:"print-config" description:"print the effective config as YAML and exit"`

	ReportEvery uint32 `long:"report-every" default:"50" description:"ticks between task A reports"`
	WaitTimeout uint32 `long:"wait-timeout" default:"300" description:"task B event wait timeout, in ticks"`
	SignalAfter uint32 `long:"signal-after" default:"200" description:"ticks before main sets the event"`
	StopAfter   uint32 `long:"stop-after" default:"200" description:"ticks after the event before main stops the tasks"`
	Join        uint32 `long:"join" default:"100" description:"join timeout per task, in ticks"`
}

func main() {
	opts := getCLIArgs()

	cfg, err := effectiveConfig(opts)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	if opts.PrintConfig {
		out, err := cfg.Marshal()
		if err != nil {
			logrus.WithError(err).Fatal("Failed to encode configuration")
		}
		_, _ = os.Stdout.Write(out)
		return
	}
	if err := zrtos.ApplyLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	if err := run(cfg, opts.scenario()); err != nil {
		logrus.WithError(err).Error("demo failed")
		os.Exit(1)
	}
}

func getCLIArgs() options {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	return opts
}

// effectiveConfig loads the config file (if any) and applies flag overrides.
func effectiveConfig(opts options) (zrtos.Config, error) {
	cfg := zrtos.DefaultConfig()
	if opts.Config != "" {
		c, err := zrtos.LoadConfig(opts.Config)
		if err != nil {
			return zrtos.Config{}, err
		}
		cfg = c
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}
	if opts.OpsAddr != "" {
		cfg.OpsAddr = opts.OpsAddr
	}
	if opts.TickPeriod != 0 {
		cfg.TickPeriod = opts.TickPeriod
	}
	return cfg, cfg.Validate()
}

func (o options) scenario() scenarioConfig {
	return scenarioConfig{
		ReportEvery: tick.Span(o.ReportEvery),
		WaitTimeout: tick.Span(o.WaitTimeout),
		SignalAfter: tick.Span(o.SignalAfter),
		StopAfter:   tick.Span(o.StopAfter),
		Join:        tick.Span(o.Join),
	}
}

func run(cfg zrtos.Config, sc scenarioConfig) error {
	logger := logrus.StandardLogger()
	rt := zrtos.New(zrtos.WithConfig(cfg), zrtos.WithLogger(logrus.NewEntry(logger)))
	if err := rt.Start(); err != nil {
		return err
	}

	var srv *http.Server
	if cfg.OpsAddr != "" {
		var err error
		if srv, err = startOpsServer(cfg, rt, logger); err != nil {
			_ = rt.Shutdown(context.Background())
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()

	s := &scenario{rt: rt, cfg: sc, log: logrus.WithField("component", "main")}
	runErr := s.run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("ops server shutdown")
		}
		cancel()
	}
	shutdownErr := rt.Shutdown(context.Background())
	if runErr == nil && shutdownErr == nil {
		s.log.Info("done")
	}
	return errors.Join(runErr, shutdownErr)
}

// opsHandler builds the ops router for rt, guarding write routes with the configured tokens
// and IP allow list.
func opsHandler(cfg zrtos.Config, rt *zrtos.Runtime, logger *logrus.Logger) http.Handler {
	opts := []ops.RouterOption{ops.WithLogger(logger)}
	if len(cfg.OpsTokens) > 0 {
		opts = append(opts, ops.WithWriteGuard(ops.TokenGuard(cfg.OpsTokens, "")))
	}
	if len(cfg.OpsAllowIPs) > 0 {
		opts = append(opts, ops.WithWriteGuard(ops.IPAllowList(cfg.OpsAllowIPs...)))
	}
	return ops.NewRouter(rt, opts...)
}

func startOpsServer(cfg zrtos.Config, rt *zrtos.Runtime, logger *logrus.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", cfg.OpsAddr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           opsHandler(cfg, rt, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	safego.Go(func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("ops server stopped")
		}
	}, safego.WithName("ops-server"))
	logrus.WithField("addr", ln.Addr().String()).Info("ops server listening")
	return srv, nil
}
