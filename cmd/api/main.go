package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goversion "github.com/caarlos0/go-version"
	"github.com/geocoder89/userroster/internal/cache"
	"github.com/geocoder89/userroster/internal/config"
	"github.com/geocoder89/userroster/internal/db"
	httpx "github.com/geocoder89/userroster/internal/http"
	"github.com/geocoder89/userroster/internal/loader"
	"github.com/geocoder89/userroster/internal/observability"
	"github.com/geocoder89/userroster/internal/redisclient"
	"github.com/geocoder89/userroster/internal/repo/postgres"
	"github.com/geocoder89/userroster/internal/roster"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// set via -ldflags at build time
var (
	version   = "dev"
	commit    = ""
	treeState = ""
	date      = ""
	builtBy   = ""
)

func main() {
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	info := buildVersion()
	if *showVersion {
		fmt.Println(info.String())
		return
	}

	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	shutdownTracer, err := observability.InitTracer(rootCtx, cfg.OTelServiceName, cfg.OTelEndpoint)
	if err != nil {
		log.Error("tracer init failed, continuing without tracing", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	store := roster.NewStore(prom)

	src, closeSource, err := buildSource(cfg, log, prom)
	if err != nil {
		// no source means no roster; surface it as a failed load
		log.Error("roster source unavailable", "source", cfg.Source, "err", err)
		store.FailLoad(err)
	} else {
		defer closeSource()

		l := loader.New(loader.Config{
			Timeout:     cfg.LoaderTimeout,
			MaxAttempts: cfg.LoaderMaxAttempts,
		}, src, store, log, prom)

		go l.Run(rootCtx)
	}

	// set up routers with the log
	router := httpx.NewRouter(log, httpx.Deps{
		Env:                cfg.Env,
		ServiceName:        tracingServiceName(cfg),
		Store:              store,
		Prom:               prom,
		Gatherer:           reg,
		Version:            info,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:       cfg.MaxBodyBytes,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "source", cfg.Source, "version", info.GitVersion)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	// an unfinished startup load is abandoned here
	cancelRoot()

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func buildSource(cfg config.Config, log *slog.Logger, prom *observability.Prom) (loader.Source, func(), error) {
	switch cfg.Source {
	case "postgres":
		pool, err := db.NewPool(cfg.DBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}

		ctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()

		if err := db.CheckRosterSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}

		return postgres.NewUsersSource(pool), pool.Close, nil

	case "http", "":
		store, closeCache := buildCache(cfg, log)

		return loader.NewHTTPSource(loader.HTTPSourceConfig{
			URL:           cfg.SourceURL,
			Cache:         store,
			Log:           log,
			OnCacheLookup: prom.ObserveCacheLookup,
		}), closeCache, nil

	default:
		return nil, nil, fmt.Errorf("unknown ROSTER_SOURCE %q", cfg.Source)
	}
}

// buildCache returns the redis response cache, or nil (no caching) when redis
// is not configured or not reachable.
func buildCache(cfg config.Config, log *slog.Logger) (cache.Store, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}

	client := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		log.Warn("redis unreachable, roster responses will not be cached", "addr", cfg.RedisAddr, "err", err)
		_ = client.Close()
		return nil, func() {}
	}

	return cache.NewRedis(client.Raw(), cfg.CacheTTL), func() { _ = client.Close() }
}

func tracingServiceName(cfg config.Config) string {
	if cfg.OTelEndpoint == "" {
		return ""
	}
	return cfg.OTelServiceName
}

func buildVersion() goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("userroster", "In-memory user roster over a remote user list.", "https://github.com/geocoder89/userroster"),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if version != "" {
				i.GitVersion = version
			}
			if treeState != "" {
				i.GitTreeState = treeState
			}
			if date != "" {
				i.BuildDate = date
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}
