package main

import (
	"encoding/base64"
	"errors"
	"log/slog"

	"github.com/aretw0/ladon/internal/logging"
	"github.com/aretw0/ladon/pkg/adapters/file"
	"github.com/aretw0/ladon/pkg/adapters/redis"
	"github.com/aretw0/ladon/pkg/automator"
	"github.com/aretw0/ladon/pkg/domain"
	"github.com/aretw0/ladon/pkg/observability"
	"github.com/aretw0/ladon/pkg/persistence/middleware"
	"github.com/aretw0/ladon/pkg/ports"
	"github.com/aretw0/ladon/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// errNotSuccessful makes the process exit with status 1 without printing anything more.
var errNotSuccessful = errors.New("result is not successful")

// app holds what the commands share, built from settings before any command runs.
type app struct {
	settings settings
	logger   *slog.Logger
	store    ports.ResultStore
	locker   ports.Locker
	registry *prometheus.Registry
	metrics  *observability.Metrics
	closers  []func() error
}

func newApp(cmd *cobra.Command, s settings) (*app, error) {
	level := domain.LevelInfo
	if s.LogLevel != "" {
		l, err := domain.ParseLevel(s.LogLevel)
		if err != nil {
			return nil, err
		}
		level = l
	}
	format, err := logging.ParseFormat(s.LogFormat)
	if err != nil {
		return nil, err
	}

	a := &app{
		settings: s,
		logger:   logging.New(level.Slog(), format, cmd.ErrOrStderr()),
		registry: prometheus.NewRegistry(),
	}
	a.metrics = observability.NewMetrics(a.registry)

	if s.RedisAddr != "" {
		rs := redis.New(s.RedisAddr, "", s.RedisDB)
		a.store = rs
		a.locker = redis.NewLocker(rs.Client(), "ladon:lock:")
		a.closers = append(a.closers, rs.Close)
		a.logger.Debug("using redis", "addr", s.RedisAddr, "db", s.RedisDB)
	} else {
		a.store = file.New(s.ResultsDir)
		a.logger.Debug("using result directory", "dir", s.ResultsDir)
	}

	mws := []middleware.Middleware{middleware.NewPIIMiddleware(s.RedactKeys)}
	if s.ResultsKey != "" {
		key, err := base64.StdEncoding.DecodeString(s.ResultsKey)
		if err != nil || len(key) != 32 {
			_ = a.Close()
			return nil, errors.New("LADON_RESULTS_KEY must be 32 bytes, base64 encoded")
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	a.store = middleware.Chain(a.store, mws...)
	return a, nil
}

// runner builds a runner that persists results and reports metrics and lifecycle logs.
func (a *app) runner(opts ...runner.Option) *runner.Runner {
	base := []runner.Option{
		runner.WithStore(a.store),
		runner.WithLogger(a.logger),
		runner.WithHooks(automator.ComposeHooks(a.metrics.Hooks(), observability.LogHooks(a.logger))),
	}
	return runner.New(append(base, opts...)...)
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
