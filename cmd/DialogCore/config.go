package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/BTreeMap/DialogCore/internal/nlu"
	"github.com/BTreeMap/DialogCore/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for DialogCore state data
	DefaultStateDir = "/var/lib/dialogcore"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "dialogcore.db"
	// DefaultAPIAddr is where the HTTP API listens by default
	DefaultAPIAddr = ":8080"
	// DefaultLogLevel is the log level when none is configured
	DefaultLogLevel = "debug"
)

// Config holds environment configuration
type Config struct {
	StateDir         string
	DatabaseDSN      string
	APIAddr          string
	LogLevel         string
	OpenAIKey        string
	GenAIModel       string
	GenAIDebug       bool
	Neo4jURI         string
	Neo4jUser        string
	Neo4jPassword    string
	Neo4jDatabase    string
	Neo4jTimeout     time.Duration
	Neo4jMaxPool     int
	RedisAddr        string
	Seed             uint64
	AnnotatorTimeout time.Duration
	MaxStateBytes    int
	HistoryTurns     int
	GreetingPipeline string
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		StateDir:         util.GetEnv("DIALOGCORE_STATE_DIR", DefaultStateDir),
		DatabaseDSN:      util.GetEnv("DATABASE_DSN", os.Getenv("DATABASE_URL")),
		APIAddr:          util.GetEnv("DIALOGCORE_API_ADDR", DefaultAPIAddr),
		LogLevel:         util.GetEnv("DIALOGCORE_LOG_LEVEL", DefaultLogLevel),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		GenAIModel:       os.Getenv("OPENAI_MODEL"),
		GenAIDebug:       util.ParseBoolEnv("DIALOGCORE_GENAI_DEBUG", false),
		Neo4jURI:         os.Getenv("NEO4J_URI"),
		Neo4jUser:        util.GetEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:    os.Getenv("NEO4J_PASSWORD"),
		Neo4jDatabase:    os.Getenv("NEO4J_DATABASE"),
		Neo4jTimeout:     time.Duration(util.ParseIntEnv("NEO4J_TIMEOUT_SECONDS", 0)) * time.Second,
		Neo4jMaxPool:     util.ParseIntEnv("NEO4J_MAX_POOL_SIZE", 0),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		Seed:             uint64(max(util.ParseIntEnv("DIALOGCORE_SEED", 0), 0)),
		AnnotatorTimeout: time.Duration(util.ParseIntEnv("DIALOGCORE_ANNOTATOR_TIMEOUT_MS", int(nlu.DefaultAnnotatorTimeout/time.Millisecond))) * time.Millisecond,
		MaxStateBytes:    util.ParseIntEnv("DIALOGCORE_MAX_STATE_BYTES", 0),
		HistoryTurns:     util.ParseIntEnv("DIALOGCORE_HISTORY_TURNS", 0),
		GreetingPipeline: util.GetEnv("DIALOGCORE_PIPELINE", os.Getenv("pipeline")),
	}
	return config
}

// MemoryDSN selects the in-memory store.
const MemoryDSN = "memory"

// DSN returns the store DSN: the SQLite file in the state directory when
// unset and "" (in-memory) for MemoryDSN.
func (c Config) DSN() string {
	switch c.DatabaseDSN {
	case "":
		return filepath.Join(c.StateDir, DefaultDBFileName)
	case MemoryDSN:
		return ""
	default:
		return c.DatabaseDSN
	}
}

// parseLogLevel maps a level name to slog; unknown names mean info.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initializeLogger sets up structured logging on stderr.
func initializeLogger(level string) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(level)}))
	slog.SetDefault(logger)
}
