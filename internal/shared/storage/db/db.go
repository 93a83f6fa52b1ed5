package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
)

// ErrNotConfigured indicates an empty DATABASE_URL.
var ErrNotConfigured = errors.New("DATABASE_URL is empty")

// Runtime selects pool defaults for the kind of process opening the result sink.
type Runtime int

const (
	RuntimeServer Runtime = iota
	RuntimeLambda
	RuntimeMigrate
)

func (r Runtime) String() string {
	switch r {
	case RuntimeLambda:
		return "lambda"
	case RuntimeMigrate:
		return "migrate"
	default:
		return "server"
	}
}

// Options controls pool sizing and the connectivity check.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var (
	openDB = sql.Open

	sharedMu sync.Mutex
	sharedDB *sql.DB
)

// IsLambdaRuntime reports whether the process runs inside AWS Lambda.
func IsLambdaRuntime() bool {
	return strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != ""
}

// DetectRuntime picks RuntimeLambda inside Lambda and RuntimeServer elsewhere.
func DetectRuntime() Runtime {
	if IsLambdaRuntime() {
		return RuntimeLambda
	}
	return RuntimeServer
}

// DefaultOptions returns pool defaults for rt. A Lambda sandbox handles one event at a
// time, and the tracker writes one job's tables per event, so its pool stays at two.
func DefaultOptions(rt Runtime) Options {
	switch rt {
	case RuntimeLambda:
		return Options{
			MaxOpenConns:    2,
			MaxIdleConns:    1,
			ConnMaxIdleTime: 30 * time.Second,
			ConnMaxLifetime: 15 * time.Minute,
			PingTimeout:     3 * time.Second,
		}
	case RuntimeMigrate:
		return Options{
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxIdleTime: 2 * time.Minute,
			ConnMaxLifetime: time.Hour,
			PingTimeout:     10 * time.Second,
		}
	default:
		return Options{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxIdleTime: 2 * time.Minute,
			ConnMaxLifetime: time.Hour,
			PingTimeout:     5 * time.Second,
		}
	}
}

// OptionsFromEnv overrides defaults with DB_* variables when they parse.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	overrideEnv("DB_MAX_OPEN_CONNS", strconv.Atoi, &opts.MaxOpenConns)
	overrideEnv("DB_MAX_IDLE_CONNS", strconv.Atoi, &opts.MaxIdleConns)
	overrideEnv("DB_CONN_MAX_LIFETIME", time.ParseDuration, &opts.ConnMaxLifetime)
	overrideEnv("DB_CONN_MAX_IDLE_TIME", time.ParseDuration, &opts.ConnMaxIdleTime)
	overrideEnv("DB_PING_TIMEOUT", time.ParseDuration, &opts.PingTimeout)
	return opts
}

// Open returns the result sink pool for rt. Under Lambda the pool is shared by every
// invocation of the sandbox; other runtimes get a pool of their own.
func Open(ctx context.Context, databaseURL string, rt Runtime) (*sql.DB, error) {
	opts := OptionsFromEnv(DefaultOptions(rt))
	if rt == RuntimeLambda {
		return Shared(ctx, databaseURL, opts)
	}
	return Connect(ctx, databaseURL, opts, rt)
}

// Connect opens a pgx-backed pool and pings it.
func Connect(ctx context.Context, databaseURL string, opts Options, rt Runtime) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrNotConfigured
	}

	pool, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configure(pool, opts)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := pool.Stats()
	telemetry.Info("db.pool.ready", map[string]any{
		"runtime":  rt.String(),
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
	})
	return pool, nil
}

// Shared returns the process-wide pool, connecting on first use. Concurrent callers wait
// for the connection in flight; a failed connection is retried by the next caller.
func Shared(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedDB != nil {
		return sharedDB, nil
	}
	pool, err := Connect(ctx, databaseURL, opts, RuntimeLambda)
	if err != nil {
		return nil, err
	}
	sharedDB = pool
	return sharedDB, nil
}

func resetShared() {
	sharedMu.Lock()
	sharedDB = nil
	sharedMu.Unlock()
}

func configure(pool *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 || opts.MaxIdleConns > opts.MaxOpenConns {
		opts.MaxIdleConns = opts.MaxOpenConns
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	pool.SetMaxOpenConns(opts.MaxOpenConns)
	pool.SetMaxIdleConns(opts.MaxIdleConns)
	pool.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		pool.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func overrideEnv[T any](key string, parse func(string) (T, error), dst *T) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := parse(raw)
	if err != nil {
		telemetry.Warn("db.env.invalid", map[string]any{"key": key, "error": err})
		return
	}
	*dst = v
}
