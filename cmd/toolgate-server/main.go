package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lumen-cms/toolgate/internal/audit"
	"github.com/lumen-cms/toolgate/internal/caches"
	"github.com/lumen-cms/toolgate/internal/content"
	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/policy"
	"github.com/lumen-cms/toolgate/internal/principal"
	"github.com/lumen-cms/toolgate/internal/server"
	"github.com/lumen-cms/toolgate/internal/tools"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	callTool := flag.String("call", "", "invoke one tool in CLI mode and exit, e.g. -call collections-list")
	callArgs := flag.String("args", "{}", "JSON arguments for -call")
	flag.Parse()

	// Logger
	logger := mustBuildLogger(envOrDefault("TOOLGATE_LOG_LEVEL", "info"))
	defer logger.Sync() //nolint:errcheck // best-effort flush

	// Config from env
	port := envOrDefault("TOOLGATE_PORT", "8080")
	version := envOrDefault("TOOLGATE_VERSION", "dev")
	clickhouseDSN := os.Getenv("CLICKHOUSE_DSN")
	postgresDSN := os.Getenv("POSTGRES_DSN")
	redisAddr := os.Getenv("REDIS_ADDR")
	rateMaxAttempts := envOrDefaultInt("TOOLGATE_RATE_MAX_ATTEMPTS", 30)
	rateWindowS := envOrDefaultInt("TOOLGATE_RATE_WINDOW_S", 60)
	keyCacheTTL := envOrDefaultInt("TOOLGATE_KEY_CACHE_TTL_S", 30)
	auditEnabled := envOrDefault("TOOLGATE_AUDIT", "on") != "off"

	logger.Info("starting toolgate server",
		zap.String("port", port),
		zap.String("version", version),
		zap.Int("rate_max_attempts", rateMaxAttempts),
		zap.Int("rate_window_s", rateWindowS),
	)

	// Audit — ClickHouse or LogWriter fallback
	var writer audit.Writer
	if !auditEnabled {
		writer = audit.NopWriter{}
		logger.Info("audit logging disabled")
	} else if clickhouseDSN != "" {
		chWriter, err := audit.NewClickHouseWriter(clickhouseDSN, logger)
		if err != nil {
			logger.Warn("clickhouse connection failed, falling back to log writer", zap.Error(err))
			writer = audit.NewLogWriter(logger)
		} else {
			writer = chWriter
			logger.Info("clickhouse audit writer connected")
		}
	} else {
		writer = audit.NewLogWriter(logger)
		logger.Info("no CLICKHOUSE_DSN set, using log audit writer")
	}
	defer writer.Close()

	// Content repository and key resolver — Postgres if DSN provided
	var repo content.Repository
	var resolver principal.Resolver
	if postgresDSN != "" {
		db, err := sql.Open("pgx", postgresDSN)
		if err != nil {
			logger.Fatal("failed to open postgres", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(context.Background()); err != nil {
			logger.Fatal("failed to ping postgres", zap.Error(err))
		}
		repo = content.NewPostgresRepository(db, logger)
		resolver = principal.NewPostgresResolver(principal.PostgresResolverConfig{
			DB:       db,
			CacheTTL: time.Duration(keyCacheTTL) * time.Second,
			Logger:   logger,
		})
		logger.Info("postgres repository connected")
	} else {
		repo = content.NewMemoryRepository()
		resolver = principal.NewStaticResolver()
		logger.Info("no POSTGRES_DSN set, using in-memory repository and static keys")
	}

	// Rate counter — Redis if addr provided
	var counter policy.CounterStore
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis connection failed, falling back to in-memory counters", zap.Error(err))
			counter = policy.NewMemoryCounter()
		} else {
			counter = policy.NewRedisCounter(rdb)
			logger.Info("redis rate counter connected")
		}
	} else {
		counter = policy.NewMemoryCounter()
		logger.Info("no REDIS_ADDR set, using in-memory rate counters")
	}

	limiter := policy.NewRateLimiter(counter, rateMaxAttempts,
		time.Duration(rateWindowS)*time.Second, logger)
	invalidator := caches.NewLogInvalidator(logger)

	registry := dispatch.NewRegistry()
	if err := tools.RegisterAll(registry, tools.Deps{Repo: repo, Invalidator: invalidator}); err != nil {
		logger.Fatal("tool registration failed", zap.Error(err))
	}

	dispatcher := dispatch.NewDispatcher(dispatch.Config{
		Registry:    registry,
		Authorizer:  policy.NewAuthorizer(limiter, logger),
		Invalidator: invalidator,
		Audit:       writer,
		Logger:      logger,
		Versions:    map[string]string{"toolgate": version},
	})

	if *callTool != "" {
		runOnce(dispatcher, *callTool, *callArgs, logger)
		return
	}

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           server.NewServer(dispatcher, resolver, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown did not complete cleanly", zap.Error(err))
		}
	}()

	logger.Info("toolgate server listening", zap.String("addr", httpServer.Addr))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

// runOnce executes one tool invocation in CLI mode and prints the
// envelope. CLI mode bypasses remote authorization; the audit trail
// still records the call.
func runOnce(dispatcher *dispatch.Dispatcher, toolName, rawArgs string, logger *zap.Logger) {
	var args map[string]any
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		logger.Fatal("invalid -args JSON", zap.Error(err))
	}
	env := dispatcher.Dispatch(context.Background(), toolName, args,
		policy.CallerContext{Mode: policy.ModeCLI})
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		logger.Fatal("marshal envelope", zap.Error(err))
	}
	fmt.Println(string(out))
	if env.IsError() {
		os.Exit(1)
	}
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
