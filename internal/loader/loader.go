package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/userroster/internal/domain/user"
	"github.com/geocoder89/userroster/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Source interface {
	Name() string
	FetchUsers(ctx context.Context) ([]user.User, error)
}

// Sink receives the single load outcome. roster.Store implements it.
type Sink interface {
	ApplyLoad(users []user.User)
	FailLoad(err error)
}

type Metrics interface {
	ObserveSource(source string, fn func() error) error
	ObserveLoad(result string, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveSource(_ string, fn func() error) error { return fn() }
func (noopMetrics) ObserveLoad(string, time.Duration)             {}

type Config struct {
	Timeout     time.Duration
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// Result is what the one startup load produced.
type Result struct {
	Users    []user.User
	Attempts int
	Err      error
}

func (r Result) OK() bool { return r.Err == nil }

type Loader struct {
	cfg     Config
	src     Source
	sink    Sink
	log     *slog.Logger
	metrics Metrics

	once   sync.Once
	result Result
}

func New(cfg Config, src Source, sink Sink, log *slog.Logger, metrics Metrics) *Loader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Backoff == nil {
		cfg.Backoff = ExponentialBackoff
	}
	if log == nil {
		log = slog.Default()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Loader{
		cfg:     cfg,
		src:     src,
		sink:    sink,
		log:     log,
		metrics: metrics,
	}
}

// Run performs the startup load and hands the outcome to the sink. Only the
// first call does any work; later calls return the same result.
func (l *Loader) Run(ctx context.Context) Result {
	l.once.Do(func() {
		l.result = l.run(ctx)
	})
	return l.result
}

func (l *Loader) run(ctx context.Context) Result {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	ctx, span := observability.Tracer().Start(ctx, "roster.load")
	defer span.End()
	span.SetAttributes(attribute.String("roster.source", l.src.Name()))

	var (
		users    []user.User
		err      error
		attempts int
	)

	for attempt := 0; attempt < l.cfg.MaxAttempts; attempt++ {
		attempts++

		err = l.metrics.ObserveSource(l.src.Name(), func() error {
			var fetchErr error
			users, fetchErr = l.src.FetchUsers(ctx)
			return fetchErr
		})
		if err == nil {
			break
		}

		if attempt == l.cfg.MaxAttempts-1 {
			break
		}

		delay := l.cfg.Backoff(attempt)
		l.log.WarnContext(ctx, "roster load attempt failed",
			"source", l.src.Name(), "attempt", attempts, "retry_in_ms", delay.Milliseconds(), "err", err)

		if waitErr := sleep(ctx, delay); waitErr != nil {
			err = fmt.Errorf("%w (last error: %v)", waitErr, err)
			break
		}
	}

	span.SetAttributes(attribute.Int("roster.attempts", attempts))

	if err != nil {
		l.log.ErrorContext(ctx, "roster load failed", "source", l.src.Name(), "attempts", attempts, "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "roster load failed")
		l.metrics.ObserveLoad("failed", time.Since(start))
		l.sink.FailLoad(err)
		return Result{Attempts: attempts, Err: err}
	}

	span.SetAttributes(attribute.Int("roster.count", len(users)))
	l.log.InfoContext(ctx, "roster loaded", "source", l.src.Name(), "count", len(users), "attempts", attempts)
	l.metrics.ObserveLoad("ready", time.Since(start))
	l.sink.ApplyLoad(users)

	return Result{Users: users, Attempts: attempts}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
