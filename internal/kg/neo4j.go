package kg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/BTreeMap/DialogCore/internal/models"
)

// Neo4jConfig holds connection settings for Neo4jGraph.
type Neo4jConfig struct {
	URI         string
	User        string
	Password    string
	Database    string
	Timeout     time.Duration
	MaxPoolSize int
}

// Neo4jGraph reads entities stored as (:Entity {name, name_norm, types,
// plural, pageview, aliases, aliases_norm}) nodes.
type Neo4jGraph struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jGraph connects and verifies connectivity.
func NewNeo4jGraph(ctx context.Context, cfg Neo4jConfig) (*Neo4jGraph, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j: uri required")
	}
	if cfg.User == "" {
		cfg.User = "neo4j"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = 50
	}

	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = cfg.MaxPoolSize
		c.SocketConnectTimeout = cfg.Timeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}
	slog.Info("Neo4jGraph connected", "uri", cfg.URI, "database", cfg.Database)
	return &Neo4jGraph{driver: driver, database: cfg.Database}, nil
}

const entityReturn = `RETURN e.name AS name, e.types AS types, e.plural AS plural, e.pageview AS pageview, e.aliases AS aliases`

func (g *Neo4jGraph) read(ctx context.Context, query string, params map[string]any) ([]Entry, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: g.database,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		entries := make([]Entry, 0, len(records))
		for _, rec := range records {
			entries = append(entries, entryFromRecord(rec))
		}
		return entries, nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: read: %w", err)
	}
	return out.([]Entry), nil
}

func entryFromRecord(rec *neo4j.Record) Entry {
	name, _ := rec.Get("name")
	types, _ := rec.Get("types")
	plural, _ := rec.Get("plural")
	pageview, _ := rec.Get("pageview")
	aliases, _ := rec.Get("aliases")

	n, _ := name.(string)
	p, _ := plural.(bool)
	pv, _ := pageview.(int64)
	return Entry{
		Entity:  models.NewEntity(n, toStrings(types), p, int(pv)),
		Aliases: toStrings(aliases),
	}
}

func toStrings(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, x := range list {
		if s, ok := x.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (g *Neo4jGraph) first(ctx context.Context, query string, params map[string]any) (*models.Entity, error) {
	entries, err := g.read(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entries[0].Entity, nil
}

func (g *Neo4jGraph) Lookup(ctx context.Context, name string) (*models.Entity, error) {
	return g.first(ctx, `MATCH (e:Entity {name_norm: $k}) `+entityReturn+` LIMIT 1`,
		map[string]any{"k": key(name)})
}

func (g *Neo4jGraph) LookupAlias(ctx context.Context, alias string) (*models.Entity, error) {
	return g.first(ctx, `MATCH (e:Entity) WHERE e.name_norm = $k OR $k IN coalesce(e.aliases_norm, []) `+
		entityReturn+` ORDER BY e.pageview DESC LIMIT 1`,
		map[string]any{"k": key(alias)})
}

func (g *Neo4jGraph) Aliases(ctx context.Context, name string) ([]string, error) {
	entries, err := g.read(ctx, `MATCH (e:Entity {name_norm: $k}) `+entityReturn+` LIMIT 1`,
		map[string]any{"k": key(name)})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entries[0].Aliases, nil
}

func (g *Neo4jGraph) Catalog(ctx context.Context) ([]Entry, error) {
	return g.read(ctx, `MATCH (e:Entity) `+entityReturn+` ORDER BY e.name`, nil)
}

func (g *Neo4jGraph) Close(ctx context.Context) error {
	if g == nil || g.driver == nil {
		return nil
	}
	err := g.driver.Close(ctx)
	g.driver = nil
	return err
}
