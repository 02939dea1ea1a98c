// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(types.CatalogConfig{
		Enabled:    true,
		Path:       filepath.Join(t.TempDir(), "nested", "catalog.db"),
		MaxResults: 10,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func entry(slug, title string, pos int, body string) Entry {
	return Entry{
		Section: types.Section{Title: title, Slug: slug, Body: body, Position: pos},
		Path:    filepath.Join("output", slug, "index.md"),
	}
}

func guideEntries() []Entry {
	return []Entry{
		entry("introduction", "Introduction", 1, "Welcome to the operator guide."),
		entry("installation", "Installation", 2, "Install the chart with helm and verify the pods."),
		entry("upgrades", "Upgrades", 3, "Rolling upgrades keep the cluster available."),
	}
}

func TestRecordAndRuns(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first, err := store.Record(ctx, Run{Source: "docs/index.adoc", OutputDir: "output", Runner: "toolchain"}, guideEntries())
	require.NoError(t, err)
	second, err := store.Record(ctx, Run{Source: "docs/index.adoc", OutputDir: "output", Runner: "container/docker"}, guideEntries()[:1])
	require.NoError(t, err)
	assert.Greater(t, second, first)

	runs, err := store.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, 1, runs[0].Sections)
	assert.Equal(t, "container/docker", runs[0].Runner)
	assert.Equal(t, first, runs[1].ID)
	assert.Equal(t, 3, runs[1].Sections)
	assert.Equal(t, "docs/index.adoc", runs[1].Source)
	assert.WithinDuration(t, time.Now(), runs[1].CreatedAt, time.Minute)
}

func TestRuns_Limit(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := store.Record(ctx, Run{Source: "a.adoc", OutputDir: "out"}, nil)
		require.NoError(t, err)
	}

	runs, err := store.Runs(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestSearch(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.Record(ctx, Run{Source: "a.adoc", OutputDir: "output"}, guideEntries())
	require.NoError(t, err)

	hits, err := store.Search(ctx, "helm", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "installation", hits[0].Slug)
	assert.Equal(t, 2, hits[0].Position)
	assert.Equal(t, filepath.Join("output", "installation", "index.md"), hits[0].Path)
	assert.Equal(t, Checksum("Install the chart with helm and verify the pods."), hits[0].Checksum)

	hits, err = store.Search(ctx, "upgrades", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Upgrades", hits[0].Title)

	hits, err = store.Search(ctx, "nonexistent", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_LatestRunOnly(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	firstID, err := store.Record(ctx, Run{Source: "a.adoc", OutputDir: "output"}, guideEntries())
	require.NoError(t, err)

	hits, err := store.Search(ctx, "helm", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, firstID, hits[0].RunID)

	_, err = store.Record(ctx, Run{Source: "a.adoc", OutputDir: "output"}, guideEntries()[:1])
	require.NoError(t, err)

	hits, err = store.Search(ctx, "helm", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_EmptyQuery(t *testing.T) {
	_, err := testStore(t).Search(context.Background(), "   ", 0)
	require.Error(t, err)
	assert.True(t, apperr.IsMalformed(err))
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	store, err := Open(types.CatalogConfig{Path: path})
	require.NoError(t, err)
	_, err = store.Record(ctx, Run{Source: "a.adoc", OutputDir: "output"}, guideEntries())
	require.NoError(t, err)
	fts := store.FullText()
	require.NoError(t, store.Close())

	store, err = Open(types.CatalogConfig{Path: path})
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, fts, store.FullText())

	runs, err := store.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Checksum(""))
	assert.NotEqual(t, Checksum("a"), Checksum("b"))
}
