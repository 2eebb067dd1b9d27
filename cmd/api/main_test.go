package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/geocoder89/userroster/internal/config"
	"github.com/geocoder89/userroster/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildCache_WithoutRedisMeansNoCache(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{name: "redis not configured", cfg: config.Config{}},
		{name: "redis unreachable", cfg: config.Config{RedisAddr: "127.0.0.1:1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, closeFn := buildCache(tt.cfg, discardLogger())
			defer closeFn()

			if store != nil {
				t.Fatalf("expected no cache, got %T", store)
			}
		})
	}
}

func TestBuildSource_HTTPWithoutRedisFetchesUpstream(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `[{"id":1,"name":"Ann"}]`)
	}))
	defer srv.Close()

	prom := observability.NewProm(prometheus.NewRegistry())
	src, closeFn, err := buildSource(config.Config{Source: "http", SourceURL: srv.URL}, discardLogger(), prom)
	if err != nil {
		t.Fatalf("buildSource: %v", err)
	}
	defer closeFn()

	for i := 0; i < 2; i++ {
		users, err := src.FetchUsers(context.Background())
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(users) != 1 || users[0].Name != "Ann" {
			t.Fatalf("unexpected users: %+v", users)
		}
	}

	if got := hits.Load(); got != 2 {
		t.Fatalf("expected every fetch to reach upstream, got %d requests", got)
	}
}

func TestBuildSource_UnknownSource(t *testing.T) {
	prom := observability.NewProm(prometheus.NewRegistry())

	if _, _, err := buildSource(config.Config{Source: "ftp"}, discardLogger(), prom); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}
