// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/internal/rewrite"
)

func TestFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "rewritten section",
			content: rewrite.Apply("# Getting Started\nInstall it.\n\n## Details\nMore.", 2),
		},
		{
			name:    "converted styles are fine",
			content: rewrite.Apply("# Layout\n<div style=\"font-size: 12px\">x</div>", 1),
		},
		{
			name:    "no front matter",
			content: "# Intro\nbody",
			want:    []string{"missing front matter"},
		},
		{
			name:    "zero position",
			content: "---\nsidebar_position: 0\ntitle: Intro\n---\n\n# Intro\n",
			want:    []string{"sidebar_position must be positive, got 0"},
		},
		{
			name:    "empty title",
			content: "---\nsidebar_position: 1\ntitle:\n---\n\n# Intro\n",
			want:    []string{"empty title"},
		},
		{
			name:    "heading differs from title",
			content: "---\nsidebar_position: 1\ntitle: Intro\n---\n\n# Introduction\n",
			want:    []string{`heading "Introduction" does not match title "Intro"`},
		},
		{
			name:    "no heading",
			content: "---\nsidebar_position: 1\ntitle: Intro\n---\n\nJust text.\n",
			want:    []string{"no level-1 heading"},
		},
		{
			name:    "two headings",
			content: "---\nsidebar_position: 1\ntitle: Intro\n---\n\n# Intro\n\n# Again\n",
			want:    []string{"2 level-1 headings, want 1"},
		},
		{
			name:    "leftover inline style",
			content: "---\nsidebar_position: 1\ntitle: Intro\n---\n\n# Intro\n<p style=\"color: red\">x</p>\n",
			want:    []string{"1 inline style attribute(s) not converted"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := File([]byte(tt.content))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFile_UndecodableFrontMatter(t *testing.T) {
	_, got := File([]byte(rewrite.Apply("# Kubernetes: The Hard Way\nbody", 1)))
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "front matter does not decode")
}

func TestFile_ReturnsMeta(t *testing.T) {
	meta, got := File([]byte(rewrite.Apply("# FAQ\nQ and A", 7)))
	assert.Empty(t, got)
	assert.Equal(t, Meta{SidebarPosition: 7, Title: "FAQ"}, meta)
}

func writeTree(t *testing.T, fsys afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
	}
}

func TestTree(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"out/intro/index.md":  rewrite.Apply("# Intro\nhello", 1),
		"out/setup/index.md":  rewrite.Apply("# Setup\nsteps", 2),
		"out/_ordinal.yaml":   "- slug: intro\n  position: 1\n",
		"out/setup/notes.txt": "ignored",
		"out/extra/index.mdx": "ignored for md",
	})

	report, err := Tree(fsys, "out", "md")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.True(t, report.OK(), "findings: %v", report.Findings)
}

func TestTree_DuplicatePositions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"out/a/index.md": rewrite.Apply("# A\n", 1),
		"out/b/index.md": rewrite.Apply("# B\n", 1),
		"out/c/index.md": rewrite.Apply("# C\n", 2),
	})

	report, err := Tree(fsys, "out", "md")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, []Finding{
		{Path: "out/a/index.md", Message: "sidebar_position 1 also used by out/b/index.md"},
		{Path: "out/b/index.md", Message: "sidebar_position 1 also used by out/a/index.md"},
	}, report.Findings)
}

func TestTree_ReportsPerFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"out/raw/index.md": "# Raw\nnot rewritten",
	})

	report, err := Tree(fsys, "out", "md")
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, []Finding{{Path: "out/raw/index.md", Message: "missing front matter"}}, report.Findings)
	assert.Equal(t, "out/raw/index.md: missing front matter", report.Findings[0].String())
}

func TestTree_MissingDirectory(t *testing.T) {
	_, err := Tree(afero.NewMemMapFs(), "absent", "md")
	require.Error(t, err)
	assert.True(t, apperr.IsFileSystem(err))
}
