// cmd/agent/main.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"reservation-agent/internal/agent"
	"reservation-agent/internal/agent/executor"
	"reservation-agent/internal/agent/intent"
	"reservation-agent/internal/agent/validator"
	"reservation-agent/internal/catalog"
	"reservation-agent/internal/common/config"
	"reservation-agent/internal/common/database"
	"reservation-agent/internal/common/logger"
	"reservation-agent/internal/common/observability"
	"reservation-agent/internal/models"
	"reservation-agent/internal/notify"
	"reservation-agent/internal/session"
	"reservation-agent/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting reservation agent...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, cfg.App.JaegerURL)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Load restaurant catalog ---
	cat := catalog.Load(cfg.Catalog.Path, log)
	zapLog.Info("Catalog loaded", zap.Int("restaurants", len(cat.All())))

	// --- Init reservation store ---
	resStore := store.NewPostgresStore(pg.DB, cat, log)
	if err := resStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	// --- Init notifier ---
	var notifier notify.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsNotifier, err := notify.NewAWSNotifier(ctx, cfg.Notifications, log)
		if err != nil {
			zapLog.Fatal("failed to create AWS notifier", zap.Error(err))
		}
		notifier = awsNotifier
		zapLog.Info("AWS notifier initialized", zap.String("region", cfg.Notifications.AWS.Region))
	} else {
		notifier = notify.NewStubNotifier(log)
		zapLog.Info("Notification delivery stubbed")
	}

	// --- Init session store ---
	sessions := session.NewStore(rdb.Client, cfg.Session, log)

	// --- Assemble pipeline ---
	intentCfg := intent.LoadConfig()
	intentCfg.SearchLimit = cfg.Agent.SearchLimit
	intentCfg.RecommendLimit = cfg.Agent.RecommendLimit
	if len(cfg.Agent.Areas) > 0 {
		intentCfg.Areas = cfg.Agent.Areas
	}

	extractor := intent.NewExtractor(intentCfg, log)

	val, err := validator.New()
	if err != nil {
		zapLog.Fatal("failed to compile plan schema", zap.Error(err))
	}

	exec := executor.New(resStore, notifier, log).
		WithStepTimeout(config.GetDuration(cfg.Agent.StepTimeout))
	app := agent.New(extractor, val, exec, resStore, obs, log, cfg.Agent.SearchLimit)

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("addr", cfg.App.MetricsAddr))
		if err := http.ListenAndServe(cfg.App.MetricsAddr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Interactive loop ---
	sessionID := uuid.New().String()[:8]
	zapLog.Info("Session started", zap.String("session_id", sessionID))

	inputCh := make(chan string)
	go func() {
		defer close(inputCh)
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Println("Restaurant reservation agent. Type a message, or 'quit' to exit.")
		fmt.Print("> ")
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			zapLog.Info("Shutdown signal received, stopping agent...")
			return
		case line, ok := <-inputCh:
			if !ok {
				zapLog.Info("Input closed, stopping agent...")
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				fmt.Print("> ")
				continue
			}
			if text == "quit" || text == "exit" {
				zapLog.Info("Agent stopped gracefully")
				return
			}

			msgCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			sessCtx, err := sessions.Context(msgCtx, sessionID)
			if err != nil {
				log.Warn("session context unavailable", map[string]interface{}{"error": err.Error()})
			}

			result := app.HandleMessage(msgCtx, text, sessCtx)
			fmt.Println(result.Reply)

			turn := session.Turn{UserText: text, Reply: result.Reply}
			if parsed, ok := result.Debug["parsed"].(map[string]interface{}); ok {
				if in, ok := parsed["intent"].(string); ok {
					turn.Intent = models.Intent(in)
				}
			}
			if err := sessions.Append(msgCtx, sessionID, turn); err != nil {
				log.Warn("failed to record session turn", map[string]interface{}{"error": err.Error()})
			}
			cancel()
			fmt.Print("> ")
		}
	}
}
