package kg

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGraphLookup(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGraph(DefaultCatalog()...)

	e, err := g.Lookup(ctx, "queen (band)")
	require.NoError(t, err)
	assert.Equal(t, "Queen", e.TalkableName)

	e, err = g.LookupAlias(ctx, "Queen")
	require.NoError(t, err, "talkable name should resolve")
	assert.Equal(t, "Queen (band)", e.Name)

	e, err = g.LookupAlias(ctx, "beatles")
	require.NoError(t, err)
	assert.Equal(t, "The Beatles", e.Name)

	_, err = g.Lookup(ctx, "nothing here")
	assert.True(t, errors.Is(err, ErrNotFound))

	aliases, err := g.Aliases(ctx, "Dog")
	require.NoError(t, err)
	assert.Contains(t, aliases, "puppy")
}

func TestMemoryGraphCatalogSorted(t *testing.T) {
	g := NewMemoryGraph(DefaultCatalog()...)
	cat, err := g.Catalog(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, cat)
	for i := 1; i < len(cat); i++ {
		assert.Less(t, cat[i-1].Entity.Name, cat[i].Entity.Name)
	}
}

func TestSurfaceForms(t *testing.T) {
	forms := SurfaceForms(entry("Queen (band)", nil, true, 1, "Queen", "queen band"))
	assert.Equal(t, []string{"queen", "queen band"}, forms)
}

func TestNeo4jGraphFromEnv(t *testing.T) {
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}
	ctx := context.Background()
	g, err := NewNeo4jGraph(ctx, Neo4jConfig{
		URI:      uri,
		User:     os.Getenv("NEO4J_USER"),
		Password: os.Getenv("NEO4J_PASSWORD"),
		Database: os.Getenv("NEO4J_DATABASE"),
	})
	require.NoError(t, err)
	defer g.Close(ctx)
	_, err = g.Catalog(ctx)
	require.NoError(t, err)
}
