package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func (p *Prom) ObserveSource(source string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"

	if err != nil {
		status = "error"
		p.SourceErrorsTotal.WithLabelValues(source, ClassifyErr(err)).Inc()
	}
	p.SourceFetchDuration.WithLabelValues(source, status).Observe(time.Since(start).Seconds())
	return err
}

// ClassifyErr buckets a source error into a low-cardinality label.
func ClassifyErr(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01":
			return "undefined_table"
		case "57014":
			return "query_canceled"
		default:
			return "pg_" + pgErr.Code
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var statusErr interface{ StatusCode() int }
	if errors.As(err, &statusErr) {
		return "http_status"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection") || strings.Contains(msg, "dial"):
		return "connection"
	case strings.Contains(msg, "decode") || strings.Contains(msg, "json"):
		return "decode"
	default:
		return "unknown"
	}
}
