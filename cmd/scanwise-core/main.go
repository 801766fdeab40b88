package main

// @title           Scanwise Core API
// @version         1.0
// @description     Retrieval-augmented assistant over security scan findings. Scanwise Core indexes nmap, nuclei, dirsearch and nikto results and answers questions grounded in them.

// @contact.name   Hardline Labs OSS
// @contact.url    https://github.com/hardline-labs/scanwise-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/hardline-labs/scanwise-core/internal/adapters/driven/ai"
	"github.com/hardline-labs/scanwise-core/internal/adapters/driven/auth"
	"github.com/hardline-labs/scanwise-core/internal/adapters/driven/index"
	"github.com/hardline-labs/scanwise-core/internal/adapters/driven/postgres"
	redisqueue "github.com/hardline-labs/scanwise-core/internal/adapters/driven/queue/redis"
	redisadapter "github.com/hardline-labs/scanwise-core/internal/adapters/driven/redis"
	"github.com/hardline-labs/scanwise-core/internal/adapters/driven/scanner"
	"github.com/hardline-labs/scanwise-core/internal/adapters/driving/cli"
	"github.com/hardline-labs/scanwise-core/internal/adapters/driving/http"
	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven/mocks"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driving"
	"github.com/hardline-labs/scanwise-core/internal/core/services"
	"github.com/hardline-labs/scanwise-core/internal/findings"
	"github.com/hardline-labs/scanwise-core/internal/runtime"
	"github.com/hardline-labs/scanwise-core/internal/worker"
)

var version = "dev"

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Get run mode from environment (RUN_MODE) or command line arg
	mode := getEnv("RUN_MODE", "all")
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	log.Printf("scanwise-core %s starting in %s mode", version, mode)

	// Configuration from environment
	port := getEnvInt("PORT", 8080)
	databaseURL := getEnv("DATABASE_URL", "")
	redisURL := getEnv("REDIS_URL", "")
	jwtSecret := getEnv("JWT_SECRET", "")
	passwordHash := getEnv("OPERATOR_PASSWORD_HASH", "")
	dataDir := getEnv("DATA_DIR", "data")
	resultsDir := getEnv("RESULTS_DIR", "results")
	docsDir := getEnv("DOCS_DIR", "parsed_docs")
	indexPath := getEnv("INDEX_PATH", filepath.Join(dataDir, "findings_index.json"))

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Initialize PostgreSQL (optional) =====
	var db *postgres.DB
	if databaseURL != "" {
		log.Println("Connecting to PostgreSQL...")
		dbConfig := postgres.Config{
			URL:             databaseURL,
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300)) * time.Second,
			ConnMaxIdleTime: time.Duration(getEnvInt("DB_CONN_MAX_IDLE_SEC", 60)) * time.Second,
		}
		var err error
		db, err = postgres.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Initialize schema (idempotent)
		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		log.Println("PostgreSQL connected and schema initialized")
	} else {
		log.Println("DATABASE_URL not set: turn history and settings persistence disabled")
	}

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if redisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Driven adapters (infrastructure) =====
	var authAdapter *auth.Adapter
	if jwtSecret != "" {
		authAdapter = auth.NewAdapter(jwtSecret, time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24))*time.Hour)
		log.Println("Session auth enabled")
	} else {
		log.Println("JWT_SECRET not set: API runs open, sessions via X-Session-ID")
	}

	aiFactory := ai.NewFactory()
	vectorIndex := index.NewDiskIndex(indexPath)

	// ===== Session Store (Redis if available, otherwise in-memory) =====
	var sessionStore driven.SessionStore
	if redisClient != nil {
		sessionStore = redisadapter.NewSessionStore(redisClient, redisadapter.DefaultSessionTTL)
		log.Println("Using Redis session store")
	} else {
		sessionStore = mocks.NewMockSessionStore()
		log.Println("Using in-memory session store")
	}

	// ===== Task Queue (Redis if available, otherwise in-memory) =====
	var taskQueue driven.TaskQueue
	if redisClient != nil {
		var err error
		taskQueue, err = redisqueue.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
		if err != nil {
			log.Fatalf("Failed to create task queue: %v", err)
		}
		log.Println("Using Redis task queue")
	} else {
		taskQueue = mocks.NewMockTaskQueue()
		log.Println("Using in-memory task queue")
	}

	// ===== Rebuild Lock (Redis if available, otherwise in-memory) =====
	var rebuildLock driven.RebuildLock
	if redisClient != nil {
		rebuildLock = redisadapter.NewLock(redisClient)
		log.Println("Using Redis rebuild lock")
	} else {
		rebuildLock = mocks.NewMockRebuildLock()
		log.Println("Using in-memory rebuild lock")
	}

	// ===== PostgreSQL stores (optional) =====
	var historyStore driven.HistoryStore
	var settingsStore driven.SettingsStore
	if db != nil {
		historyStore = postgres.NewHistoryStore(db)

		// API keys at rest are sealed with AES-256-GCM; the sealing key is
		// derived from SETTINGS_ENCRYPTION_KEY.
		keyMaterial := sha256.Sum256([]byte(getEnv("SETTINGS_ENCRYPTION_KEY", "scanwise-dev-settings-key")))
		sealer, err := postgres.NewAPIKeySealer(keyMaterial[:])
		if err != nil {
			log.Fatalf("Failed to create API key sealer: %v", err)
		}
		settingsStore = postgres.NewSettingsStore(db, sealer)
	} else {
		settingsStore = mocks.NewMockSettingsStore()
	}

	// Runtime configuration
	sessionBackend := "memory"
	if redisClient != nil {
		sessionBackend = "redis"
	}
	runtimeConfig := domain.NewRuntimeConfig(sessionBackend)
	runtimeServices := runtime.NewServices(runtimeConfig)

	// Bring up AI services from persisted settings, falling back to the
	// local Ollama defaults.
	bootstrapAIServices(ctx, settingsStore, aiFactory, runtimeServices)

	// Findings collection
	parserRegistry := findings.DefaultRegistry()
	collector := findings.NewCollector(parserRegistry, resultsDir, docsDir, slog.Default())
	scanRunner := scanner.NewRunner(resultsDir, slog.Default())

	// Services (core business logic)
	indexService := services.NewIndexService(vectorIndex, runtimeServices, slog.Default())
	assistantService := services.NewAssistantService(vectorIndex, sessionStore, historyStore, runtimeServices, slog.Default())
	settingsService := services.NewSettingsService(settingsStore, aiFactory, runtimeServices)
	pipeline := services.NewScanPipeline(scanRunner, collector, indexService, rebuildLock, slog.Default())

	log.Printf("Runtime config: session_backend=%s, embedding=%t, llm=%t",
		runtimeConfig.SessionBackend,
		runtimeConfig.EmbeddingAvailable(),
		runtimeConfig.GenerationAvailable())

	switch mode {
	case "serve":
		runAPI(port, passwordHash, assistantService, indexService, settingsService, taskQueue, authAdapter, db, redisClient)

	case "all":
		// Worker in background, API in foreground (blocks)
		go runWorker(ctx, taskQueue, pipeline)
		runAPI(port, passwordHash, assistantService, indexService, settingsService, taskQueue, authAdapter, db, redisClient)

	case "scan":
		target := getEnv("TARGET", "")
		if len(os.Args) > 2 {
			target = os.Args[2]
		}
		if target == "" {
			log.Fatal("scan mode needs a target: scanwise-core scan <target> or TARGET env")
		}
		result, err := pipeline.Run(ctx, target)
		if err != nil {
			log.Fatalf("Pipeline failed: %v", err)
		}
		log.Printf("Pipeline finished: parsed=%d indexed=%d", result.Parsed, result.Indexed)

	case "index":
		result, err := pipeline.Reindex(ctx)
		if err != nil {
			log.Fatalf("Reindex failed: %v", err)
		}
		log.Printf("Reindex finished: parsed=%d indexed=%d", result.Parsed, result.Indexed)

	case "chat":
		if err := cli.NewChat(assistantService, os.Stdin, os.Stdout).Run(ctx); err != nil {
			log.Fatalf("Chat failed: %v", err)
		}

	default:
		log.Fatalf("Unknown mode: %s (use: all, serve, scan, index, or chat)", mode)
	}
}

// bootstrapAIServices wires the embedder and generator from stored
// settings. Failures are logged, not fatal: the API still serves and the
// settings endpoint can fix the configuration at runtime.
func bootstrapAIServices(
	ctx context.Context,
	store driven.SettingsStore,
	factory driven.AIServiceFactory,
	runtimeServices *runtime.Services,
) {
	settings, err := store.GetAISettings(ctx)
	if err != nil {
		settings = domain.DefaultAISettings()
	}

	embedder, err := factory.CreateEmbedder(&settings.Embedding)
	if err != nil {
		log.Printf("Warning: embedder unavailable: %v", err)
	} else {
		runtimeServices.SetEmbedder(embedder)
	}

	generator, err := factory.CreateGenerator(&settings.LLM)
	if err != nil {
		log.Printf("Warning: generator unavailable: %v", err)
	} else {
		runtimeServices.SetGenerator(generator)
	}
}

func runAPI(
	port int,
	passwordHash string,
	assistant driving.AssistantService,
	indexer driving.IndexService,
	settingsService driving.SettingsService,
	taskQueue driven.TaskQueue,
	authAdapter *auth.Adapter,
	db *postgres.DB,
	redisClient *redis.Client,
) {
	cfg := http.Config{
		Host:                 getEnv("HOST", "0.0.0.0"),
		Port:                 port,
		Version:              version,
		OperatorPasswordHash: passwordHash,
	}

	// *auth.Adapter in an interface field must stay nil when unset
	var sessionAuth http.SessionAuth
	if authAdapter != nil {
		sessionAuth = authAdapter
	}

	var dbPinger http.Pinger
	if db != nil {
		dbPinger = db
	}
	var redisPinger http.Pinger
	if redisClient != nil {
		redisPinger = redisPing{redisClient}
	}

	server := http.NewServer(
		cfg,
		assistant,
		indexer,
		settingsService,
		taskQueue,
		sessionAuth,
		dbPinger,
		redisPinger,
	)

	log.Printf("API server starting on :%d", port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runWorker starts the task worker and blocks until ctx is cancelled.
func runWorker(ctx context.Context, taskQueue driven.TaskQueue, pipeline driving.ScanPipeline) {
	log.Println("Starting worker...")

	w := worker.NewWorker(worker.Config{
		TaskQueue:      taskQueue,
		Pipeline:       pipeline,
		Logger:         slog.Default(),
		Concurrency:    getEnvInt("WORKER_CONCURRENCY", 1),
		DequeueTimeout: getEnvInt("WORKER_DEQUEUE_TIMEOUT", 5),
	})

	if err := w.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	log.Println("Worker started, processing tasks...")

	<-ctx.Done()

	log.Println("Stopping worker...")
	w.Stop()
	log.Println("Worker stopped")
}

// redisPing adapts *redis.Client to the server's Pinger interface
type redisPing struct {
	client *redis.Client
}

func (p redisPing) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
