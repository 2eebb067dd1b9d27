package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultSourceURL = "https://jsonplaceholder.typicode.com/users"

type Config struct {
	Env  string
	Port int

	// roster source
	Source    string // "http" | "postgres"
	SourceURL string
	DBURL     string

	// upstream response cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	LoaderTimeout     time.Duration
	LoaderMaxAttempts int

	OTelEndpoint    string
	OTelServiceName string

	CORSAllowedOrigins []string
	MaxBodyBytes       int64
}

// Load reads the config from the environment. A .env file in the working
// directory is loaded first when present; real env vars win over it.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		Source:    strings.ToLower(getEnv("ROSTER_SOURCE", "http")),
		SourceURL: getEnv("ROSTER_SOURCE_URL", DefaultSourceURL),
		DBURL:     buildDBURL(),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("ROSTER_CACHE_TTL", 5*time.Minute),

		LoaderTimeout:     getEnvDuration("LOADER_TIMEOUT", 10*time.Second),
		LoaderMaxAttempts: getEnvInt("LOADER_MAX_ATTEMPTS", 1),

		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "userroster"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "roster")
	pass := getEnv("DB_PASSWORD", "roster")
	name := getEnv("DB_NAME", "roster")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

// getEnvDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	if d, err := time.ParseDuration(v); err == nil {
		return d
	}

	secs, err := strconv.Atoi(v)
	if err != nil {
		fmt.Println(err)
		return fallback
	}
	return time.Duration(secs) * time.Second
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
