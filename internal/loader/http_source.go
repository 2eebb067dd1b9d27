package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/userroster/internal/cache"
	"github.com/geocoder89/userroster/internal/domain/user"
	json "github.com/goccy/go-json"
)

const maxBodyBytes = 10 << 20

var ErrBadStatus = errors.New("unexpected upstream status")

type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrBadStatus.Error(), e.Code)
}

func (e *StatusError) Is(target error) bool { return target == ErrBadStatus }

func (e *StatusError) StatusCode() int { return e.Code }

// CacheObserver is told whether each cache lookup was a hit, miss or error.
type CacheObserver func(result string)

type HTTPSourceConfig struct {
	URL    string
	Client *http.Client
	Cache  cache.Store
	Log    *slog.Logger

	OnCacheLookup CacheObserver
}

// HTTPSource GETs a JSON array of users from a fixed URL. No query params, no
// auth, no pagination.
type HTTPSource struct {
	url     string
	client  *http.Client
	cache   cache.Store
	log     *slog.Logger
	onCache CacheObserver
}

func NewHTTPSource(cfg HTTPSourceConfig) *HTTPSource {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.OnCacheLookup == nil {
		cfg.OnCacheLookup = func(string) {}
	}

	return &HTTPSource{
		url:     cfg.URL,
		client:  cfg.Client,
		cache:   cfg.Cache,
		log:     cfg.Log,
		onCache: cfg.OnCacheLookup,
	}
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) cacheKey() string {
	return "users:v1:" + s.url
}

func (s *HTTPSource) FetchUsers(ctx context.Context) ([]user.User, error) {
	if body, ok := s.cached(ctx); ok {
		users, err := decodeUsers(body)
		if err == nil {
			return users, nil
		}
		s.log.WarnContext(ctx, "cached roster payload unreadable, refetching", "err", err)
	}

	body, err := s.get(ctx)
	if err != nil {
		return nil, err
	}

	users, err := decodeUsers(body)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cacheKey(), body); err != nil {
			s.log.WarnContext(ctx, "roster cache write failed", "err", err)
		}
	}

	return users, nil
}

func (s *HTTPSource) cached(ctx context.Context) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}

	body, ok, err := s.cache.Get(ctx, s.cacheKey())
	switch {
	case err != nil:
		s.onCache("error")
		s.log.WarnContext(ctx, "roster cache read failed", "err", err)
		return nil, false
	case !ok:
		s.onCache("miss")
		return nil, false
	default:
		s.onCache("hit")
		return body, true
	}
}

func (s *HTTPSource) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read users body: %w", err)
	}
	return body, nil
}

func decodeUsers(body []byte) ([]user.User, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("decode users: payload is not a JSON array")
	}

	users := []user.User{}
	if err := json.Unmarshal(trimmed, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}
