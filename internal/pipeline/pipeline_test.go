// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/internal/bridge"
	"github.com/pdiddy/adoc2site/internal/catalog"
	"github.com/pdiddy/adoc2site/internal/manifest"
	"github.com/pdiddy/adoc2site/internal/verify"
	"github.com/pdiddy/adoc2site/pkg/types"
)

const guide = `Generated preamble

# Introduction
Welcome.

# Getting Started
<span style="font-weight: bold; color: red">Install</span> the tools.

## Requirements
Go.

# FAQ
Ask away.
`

// fakeBridge writes a fixed Markdown document next to the source.
type fakeBridge struct {
	fsys     afero.Fs
	markdown string
	err      error
	calls    int
}

var _ bridge.Bridge = (*fakeBridge)(nil)

func (f *fakeBridge) Name() string                { return "fake" }
func (f *fakeBridge) Check(context.Context) error { return nil }

func (f *fakeBridge) ToMarkdown(_ context.Context, sourcePath string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	mdPath := bridge.SiblingPath(sourcePath, ".md")
	if err := afero.WriteFile(f.fsys, mdPath, []byte(f.markdown), 0o644); err != nil {
		return "", err
	}
	return mdPath, nil
}

func testConfig() types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()
	cfg.Output.Dir = "site/docs"
	return cfg
}

func TestRun(t *testing.T) {
	fsys := afero.NewMemMapFs()
	b := &fakeBridge{fsys: fsys, markdown: guide}
	var out bytes.Buffer

	res, err := Run(context.Background(), testConfig(), "book/index.adoc", b, fsys, &out)
	require.NoError(t, err)

	assert.Equal(t, "book/index.md", res.Markdown)
	assert.Equal(t, 3, res.Sections)
	assert.Equal(t, 3, res.Rewrite.Updated)
	assert.Empty(t, res.Collisions)
	assert.Equal(t, types.Ordinal{"introduction": 1, "getting-started": 2, "faq": 3}, res.Ordinal)

	data, err := afero.ReadFile(fsys, "site/docs/getting-started/index.md")
	require.NoError(t, err)
	assert.Equal(t, "---\nsidebar_position: 2\ntitle: Getting Started\n---\n\n"+
		"# Getting Started\n"+
		"<span style={{fontWeight: 'bold', color: 'red'}}>Install</span> the tools.\n\n"+
		"## Requirements\nGo.", string(data))

	ordinal, err := manifest.Read(fsys, "site/docs")
	require.NoError(t, err)
	assert.Equal(t, res.Ordinal, ordinal)

	report, err := verify.Tree(fsys, "site/docs", "md")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.True(t, report.OK(), "findings: %v", report.Findings)

	assert.Contains(t, out.String(), "converted: book/index.adoc -> book/index.md (fake)")
	assert.Contains(t, out.String(), "Summary: 3 sections, 0 collisions, 3 updated, 0 skipped")
}

func TestRun_Repeatable(t *testing.T) {
	fsys := afero.NewMemMapFs()
	b := &fakeBridge{fsys: fsys, markdown: guide}
	cfg := testConfig()

	_, err := Run(context.Background(), cfg, "book/index.adoc", b, fsys, &bytes.Buffer{})
	require.NoError(t, err)
	first, err := afero.ReadFile(fsys, "site/docs/faq/index.md")
	require.NoError(t, err)

	_, err = Run(context.Background(), cfg, "book/index.adoc", b, fsys, &bytes.Buffer{})
	require.NoError(t, err)
	second, err := afero.ReadFile(fsys, "site/docs/faq/index.md")
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 2, b.calls)
}

func TestRun_BridgeFailure(t *testing.T) {
	fsys := afero.NewMemMapFs()
	b := &fakeBridge{fsys: fsys, err: apperr.ExternalTool("asciidoctor", errors.New("exit status 1"))}

	_, err := Run(context.Background(), testConfig(), "book/index.adoc", b, fsys, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, apperr.IsExternalTool(err))

	exists, _ := afero.DirExists(fsys, "site/docs")
	assert.False(t, exists, "no output should be written after a bridge failure")
}

func TestRun_StrictRejectsHeadinglessDocument(t *testing.T) {
	fsys := afero.NewMemMapFs()
	b := &fakeBridge{fsys: fsys, markdown: "Only prose.\n\n## Not top level\n"}
	cfg := testConfig()
	cfg.Split.Strict = true

	_, err := Run(context.Background(), cfg, "book/index.adoc", b, fsys, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, apperr.IsMalformed(err))
}

func TestRun_HeadinglessDocument(t *testing.T) {
	fsys := afero.NewMemMapFs()
	b := &fakeBridge{fsys: fsys, markdown: "Only prose.\n"}

	res, err := Run(context.Background(), testConfig(), "book/index.adoc", b, fsys, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Sections)
	assert.Equal(t, 0, res.Rewrite.Total())
}

func TestRun_Cancelled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	b := &fakeBridge{fsys: fsys, markdown: guide}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testConfig(), "book/index.adoc", b, fsys, &bytes.Buffer{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, b.calls)
}

func TestRun_SuffixCollisions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	b := &fakeBridge{fsys: fsys, markdown: "# Notes\na\n# Notes\nb\n"}
	cfg := testConfig()
	cfg.Split.Collision = types.CollisionSuffix

	res, err := Run(context.Background(), cfg, "book/index.adoc", b, fsys, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, res.Collisions, 1)
	assert.Equal(t, types.Ordinal{"notes": 1, "notes-2": 2}, res.Ordinal)

	data, err := afero.ReadFile(fsys, "site/docs/notes-2/index.md")
	require.NoError(t, err)
	assert.Equal(t, "---\nsidebar_position: 2\ntitle: Notes\n---\n\n# Notes\nb", string(data))
}

func TestRun_RecordsCatalog(t *testing.T) {
	fsys := afero.NewMemMapFs()
	b := &fakeBridge{fsys: fsys, markdown: guide}
	cfg := testConfig()
	cfg.Catalog.Enabled = true
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "catalog.db")

	res, err := Run(context.Background(), cfg, "book/index.adoc", b, fsys, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Positive(t, res.RunID)

	store, err := catalog.Open(cfg.Catalog)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Runs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Sections)
	assert.Equal(t, "fake", runs[0].Runner)

	hits, err := store.Search(context.Background(), "welcome", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, filepath.Join("site/docs", "introduction", "index.md"), hits[0].Path)
}

func TestEntries_KeepsSurvivingDuplicate(t *testing.T) {
	sections := []types.Section{
		{Title: "Notes", Slug: "notes", Body: "first", Position: 1},
		{Title: "Other", Slug: "other", Body: "x", Position: 2},
		{Title: "Notes", Slug: "notes", Body: "second", Position: 3},
	}

	entries := Entries(sections, "out", "index.md")
	require.Len(t, entries, 2)
	assert.Equal(t, "other", entries[0].Slug)
	assert.Equal(t, "second", entries[1].Body)
	assert.Equal(t, filepath.Join("out", "notes", "index.md"), entries[1].Path)
}
