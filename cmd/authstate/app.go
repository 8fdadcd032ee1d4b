package main

import (
	"context"
	"fmt"

	authstate "github.com/goliatone/go-auth-state"
	"github.com/goliatone/go-auth-state/activitymap"
	"github.com/goliatone/go-auth-state/client/memory"
	"github.com/goliatone/go-auth-state/metrics"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/prometheus/client_golang/prometheus"
)

// App wires the memory client, the provider and the metrics sink.
type App struct {
	config   *gconfig.Container[*Config]
	logger   *glog.BaseLogger
	client   *memory.Client
	provider *authstate.Provider
	metrics  *metrics.Sink
}

func NewApp(ctx context.Context) (*App, error) {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("authstate"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(defaultConfig()).
		WithLogger(lgr.GetLogger("config"))

	if err := cfg.Load(ctx); err != nil {
		return nil, err
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithMetrics(app); err != nil {
		return nil, err
	}

	WithSession(app)

	return app, nil
}

func (a *App) Config() *Config {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func WithMetrics(app *App) error {
	sink, err := metrics.NewSink(prometheus.NewRegistry())
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not register metrics")
	}
	app.metrics = sink
	return nil
}

func WithSession(app *App) {
	cfg := app.Config()

	opts := []memory.Option{
		memory.WithTokenTTL(cfg.GetTokenTTL()),
	}
	if cfg.TokenSecret != "" {
		opts = append(opts, memory.WithTokenSecret([]byte(cfg.TokenSecret)))
	}
	app.client = memory.New(opts...)

	app.provider = authstate.NewProvider(app.client,
		authstate.WithLogger(app.GetLogger("provider")),
		authstate.WithActionTimeout(cfg.GetActionTimeout()),
		authstate.WithActivitySink(authstate.MultiSink(
			app.metrics,
			authstate.ActivitySinkFunc(func(_ context.Context, event authstate.ActivityEvent) error {
				n := activitymap.Normalize(event)
				app.GetLogger("activity").Debug("activity",
					"actor_id", n.ActorID,
					"verb", n.Verb,
					"channel", n.Channel,
					"metadata", n.Metadata,
				)
				return nil
			}),
		)),
	)
}

// Close tears down the provider and the client and prints the counters.
func (a *App) Close() {
	if err := a.provider.Close(); err != nil {
		a.GetLogger("app").Error("provider close error", "error", err)
	}
	if err := a.client.Close(); err != nil {
		a.GetLogger("app").Error("client close error", "error", err)
	}

	fmt.Println(print.MaybeHighlightJSON(a.metrics.Totals()))
}
