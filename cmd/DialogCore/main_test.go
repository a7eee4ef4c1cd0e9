package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BTreeMap/DialogCore/internal/lockfile"
	"github.com/BTreeMap/DialogCore/internal/nlu"
	"github.com/BTreeMap/DialogCore/internal/rg"
	"github.com/BTreeMap/DialogCore/internal/store"
	"github.com/BTreeMap/DialogCore/internal/testutil"
)

func TestLoadEnvironmentConfigDefaults(t *testing.T) {
	for _, key := range []string{"DIALOGCORE_STATE_DIR", "DATABASE_DSN", "DATABASE_URL", "DIALOGCORE_API_ADDR",
		"DIALOGCORE_LOG_LEVEL", "DIALOGCORE_SEED", "DIALOGCORE_ANNOTATOR_TIMEOUT_MS", "NEO4J_USER",
		"NEO4J_TIMEOUT_SECONDS", "REDIS_ADDR", "DIALOGCORE_GENAI_DEBUG", "DIALOGCORE_PIPELINE", "pipeline"} {
		t.Setenv(key, "")
	}
	c := loadEnvironmentConfig()

	assert.Equal(t, DefaultStateDir, c.StateDir)
	assert.Equal(t, DefaultAPIAddr, c.APIAddr)
	assert.Equal(t, DefaultLogLevel, c.LogLevel)
	assert.Zero(t, c.Neo4jTimeout)
	assert.Empty(t, c.GreetingPipeline)
	assert.Equal(t, "neo4j", c.Neo4jUser)
	assert.Equal(t, nlu.DefaultAnnotatorTimeout, c.AnnotatorTimeout)
	assert.Zero(t, c.Seed)
	assert.False(t, c.GenAIDebug)
	assert.Equal(t, filepath.Join(DefaultStateDir, DefaultDBFileName), c.DSN())
}

func TestLoadEnvironmentConfigOverrides(t *testing.T) {
	t.Setenv("DIALOGCORE_STATE_DIR", "/tmp/dc")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/dialog")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("DIALOGCORE_API_ADDR", ":9000")
	t.Setenv("DIALOGCORE_SEED", "42")
	t.Setenv("DIALOGCORE_ANNOTATOR_TIMEOUT_MS", "250")
	t.Setenv("DIALOGCORE_GENAI_DEBUG", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("NEO4J_TIMEOUT_SECONDS", "3")
	t.Setenv("DIALOGCORE_PIPELINE", "")
	t.Setenv("pipeline", "VOICE")
	c := loadEnvironmentConfig()

	assert.Equal(t, "/tmp/dc", c.StateDir)
	assert.Equal(t, "postgres://u:p@db/dialog", c.DSN())
	assert.Equal(t, ":9000", c.APIAddr)
	assert.Equal(t, uint64(42), c.Seed)
	assert.Equal(t, 250*time.Millisecond, c.AnnotatorTimeout)
	assert.True(t, c.GenAIDebug)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
	assert.Equal(t, 3*time.Second, c.Neo4jTimeout)
	assert.Equal(t, "VOICE", c.GreetingPipeline)

	t.Setenv("DATABASE_DSN", "/data/chat.db")
	t.Setenv("DIALOGCORE_SEED", "-5")
	c = loadEnvironmentConfig()
	assert.Equal(t, "/data/chat.db", c.DSN())
	assert.Zero(t, c.Seed)
}

func TestApplyFlags(t *testing.T) {
	names := []string{"db", "seed", "addr"}
	t.Cleanup(func() {
		for _, name := range names {
			f := rootCmd.Flags().Lookup(name)
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	assert.Contains(t, rootCmd.PersistentFlags().Lookup("db").Usage, `"memory"`)

	require.NoError(t, rootCmd.ParseFlags([]string{"--db", MemoryDSN, "--seed", "7"}))
	c := Config{DatabaseDSN: "/env/dialog.db", APIAddr: ":7000", Seed: 1}
	applyFlags(rootCmd, &c)

	assert.Equal(t, "", c.DSN())
	assert.Equal(t, uint64(7), c.Seed)
	assert.Equal(t, ":7000", c.APIAddr, "unset flags keep the environment value")
}

func TestConfigDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"default sqlite", Config{StateDir: "/srv/dc"}, "/srv/dc/dialogcore.db"},
		{"memory", Config{StateDir: "/srv/dc", DatabaseDSN: MemoryDSN}, ""},
		{"explicit", Config{DatabaseDSN: "postgresql://localhost/dc"}, "postgresql://localhost/dc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
	assert.Equal(t, "memory", dbType(""))
	assert.Equal(t, "postgres", dbType("postgresql://localhost/dc"))
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"chatty":  slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestBuildAppInMemory(t *testing.T) {
	ctx := context.Background()
	a, err := buildApp(ctx, Config{DatabaseDSN: MemoryDSN, Seed: 3, AnnotatorTimeout: time.Second}, "test")
	require.NoError(t, err)
	defer a.Close(ctx)
	assert.Nil(t, a.lock)

	greeting, err := a.manager.StartConversation(ctx)
	require.NoError(t, err)
	assert.Equal(t, rg.LaunchPhrase(""), greeting.Text)
}

func TestBuildAppLocksSQLiteStateDir(t *testing.T) {
	ctx := context.Background()
	c := Config{StateDir: t.TempDir()}
	a, err := buildApp(ctx, c, "serve")
	require.NoError(t, err)

	_, err = buildApp(ctx, c, "chat")
	require.ErrorIs(t, err, lockfile.ErrLocked)

	require.NoError(t, a.Close(ctx))
	b, err := buildApp(ctx, c, "chat")
	require.NoError(t, err)
	require.NoError(t, b.Close(ctx))
}

func TestLockDir(t *testing.T) {
	tests := map[string]string{
		"":                           "",
		"/srv/dc/dialogcore.db":      "/srv/dc",
		":memory:":                   "",
		"file:dialog.db?mode=memory": "",
		"postgres://localhost/dc":    "",
	}
	for dsn, want := range tests {
		assert.Equal(t, want, lockDir(dsn), dsn)
	}
}

func TestChatLoopRunsUntilSessionEnds(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("my name is abi\n\nI have to go.\nyes\nstill there?\n")
	require.NoError(t, chatLoop(context.Background(), testutil.NewManager(t, 3), "", in, &out))

	got := out.String()
	assert.Contains(t, got, "bot> "+rg.LaunchPhrase(""))
	assert.Contains(t, got, "Abi")
	assert.Contains(t, got, rg.ClosingStopText)
	assert.True(t, strings.HasSuffix(got, "[conversation ended]\n"), got)
}

func TestChatLoopResumeAndQuit(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewManager(t, 3)
	start, err := m.StartConversation(ctx)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, chatLoop(ctx, m, start.ConversationID, strings.NewReader("/quit\nhello\n"), &out))
	assert.Contains(t, out.String(), "[resuming "+start.ConversationID+" at turn 1]")
	assert.Contains(t, out.String(), start.Text)

	conv, err := m.GetConversation(ctx, start.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, 1, conv.TurnNum)

	err = chatLoop(ctx, m, "c_missing", strings.NewReader(""), &out)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runValidate(&out))
	assert.Contains(t, out.String(), "regex templates")
	assert.Contains(t, out.String(), "LAUNCH")
	assert.Contains(t, out.String(), "graph FOOD:")
	assert.Contains(t, out.String(), "graph MUSIC:")
	assert.True(t, strings.HasSuffix(out.String(), "ok\n"))
}
