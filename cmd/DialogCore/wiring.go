package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/BTreeMap/DialogCore/internal/arbiter"
	"github.com/BTreeMap/DialogCore/internal/dialog"
	"github.com/BTreeMap/DialogCore/internal/genai"
	"github.com/BTreeMap/DialogCore/internal/kg"
	"github.com/BTreeMap/DialogCore/internal/lockfile"
	"github.com/BTreeMap/DialogCore/internal/nlu"
	"github.com/BTreeMap/DialogCore/internal/rg"
	"github.com/BTreeMap/DialogCore/internal/store"
)

// app holds the long-lived components shared by the subcommands.
type app struct {
	manager *dialog.Manager
	store   store.Store
	graph   kg.Graph
	lock    *lockfile.Lock
}

// Close releases the store, the knowledge graph and the state lock.
func (a *app) Close(ctx context.Context) error {
	return errors.Join(a.store.Close(), a.graph.Close(ctx), a.lock.Release())
}

// lockDir returns the directory to lock for dsn, or "" when the store is
// not a SQLite file.
func lockDir(dsn string) string {
	if dsn == "" || dbType(dsn) != "sqlite3" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return ""
	}
	return filepath.Dir(dsn)
}

func dbType(dsn string) string {
	if dsn == "" {
		return "memory"
	}
	return store.DetectDSNType(dsn)
}

// openGraph connects to Neo4j when configured and falls back to the
// built-in catalog otherwise.
func openGraph(ctx context.Context, c Config) (kg.Graph, error) {
	if c.Neo4jURI == "" {
		slog.Debug("openGraph: using built-in entity catalog")
		return kg.NewMemoryGraph(kg.DefaultCatalog()...), nil
	}
	g, err := kg.NewNeo4jGraph(ctx, kg.Neo4jConfig{
		URI:         c.Neo4jURI,
		User:        c.Neo4jUser,
		Password:    c.Neo4jPassword,
		Database:    c.Neo4jDatabase,
		Timeout:     c.Neo4jTimeout,
		MaxPoolSize: c.Neo4jMaxPool,
	})
	if err != nil {
		return nil, fmt.Errorf("connect neo4j: %w", err)
	}
	slog.Info("openGraph: connected to Neo4j", "uri", c.Neo4jURI)
	return g, nil
}

// openStore opens the configured store and puts the Redis cache in front of
// it when REDIS_ADDR is set.
func openStore(ctx context.Context, c Config) (store.Store, error) {
	dsn := c.DSN()
	st, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open store (%s): %w", dbType(dsn), err)
	}
	if c.RedisAddr == "" {
		return st, nil
	}
	rdb, err := store.NewRedisClient(ctx, c.RedisAddr)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	slog.Info("openStore: conversation cache enabled", "redis_addr", c.RedisAddr)
	return store.NewCachedStore(st, rdb), nil
}

// newPipeline builds the annotator pipeline. The neural generator is only
// attached when an OpenAI key is configured.
func newPipeline(ctx context.Context, c Config, g kg.Graph) (*nlu.Pipeline, error) {
	linker, err := nlu.NewEntityLinker(ctx, g)
	if err != nil {
		return nil, err
	}
	opts := []nlu.Option{nlu.WithAnnotators(append(nlu.DefaultAnnotators(), linker)...)}
	if c.AnnotatorTimeout > 0 {
		opts = append(opts, nlu.WithTimeout(c.AnnotatorTimeout))
	}
	if c.OpenAIKey == "" {
		slog.Info("newPipeline: OPENAI_API_KEY not set, neural candidates disabled")
		return nlu.NewPipeline(opts...), nil
	}
	genOpts := []genai.Option{genai.WithAPIKey(c.OpenAIKey), genai.WithDebugMode(c.GenAIDebug, c.StateDir)}
	if c.GenAIModel != "" {
		genOpts = append(genOpts, genai.WithModel(c.GenAIModel))
	}
	client, err := genai.NewClient(genOpts...)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return nlu.NewPipeline(append(opts, nlu.WithNeuralGenerator(client))...), nil
}

// buildApp wires the dialog manager from c. command is recorded in the
// state lock.
func buildApp(ctx context.Context, c Config, command string) (_ *app, err error) {
	reg, err := rg.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("load response generators: %w", err)
	}

	var lock *lockfile.Lock
	if dir := lockDir(c.DSN()); dir != "" {
		if lock, err = lockfile.Acquire(dir, command); err != nil {
			return nil, err
		}
		defer func() {
			if err != nil {
				_ = lock.Release()
			}
		}()
	}

	g, err := openGraph(ctx, c)
	if err != nil {
		return nil, err
	}
	pipe, err := newPipeline(ctx, c, g)
	if err != nil {
		_ = g.Close(ctx)
		return nil, err
	}
	st, err := openStore(ctx, c)
	if err != nil {
		_ = g.Close(ctx)
		return nil, err
	}

	arbOpts := []arbiter.Option{arbiter.WithGraph(g), arbiter.WithPipeline(c.GreetingPipeline)}
	if c.Seed != 0 {
		arbOpts = append(arbOpts, arbiter.WithSeed(c.Seed))
	}
	if c.MaxStateBytes > 0 {
		arbOpts = append(arbOpts, arbiter.WithMaxStateBytes(c.MaxStateBytes))
	}
	var mgrOpts []dialog.Option
	if c.HistoryTurns > 0 {
		mgrOpts = append(mgrOpts, dialog.WithHistoryTurns(c.HistoryTurns))
	}

	mgr := dialog.NewManager(st, arbiter.New(reg, arbOpts...), pipe, mgrOpts...)
	slog.Info("DialogCore ready", "rgs", reg.Names(), "store", dbType(c.DSN()))
	return &app{manager: mgr, store: st, graph: g, lock: lock}, nil
}
