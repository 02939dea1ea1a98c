// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the full conversion: AsciiDoc to Markdown through
// the bridge, split into one directory per top-level section, write the
// ordinal manifest, prepend front matter, and optionally record the run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/internal/bridge"
	"github.com/pdiddy/adoc2site/internal/catalog"
	"github.com/pdiddy/adoc2site/internal/manifest"
	"github.com/pdiddy/adoc2site/internal/rewrite"
	"github.com/pdiddy/adoc2site/internal/split"
	"github.com/pdiddy/adoc2site/pkg/types"
)

// Result summarizes one pipeline run.
type Result struct {
	Source     string
	Markdown   string
	Sections   int
	Collisions []split.Collision
	Rewrite    rewrite.Result
	Ordinal    types.Ordinal
	RunID      int64
}

// Run converts sourcePath into a Docusaurus section tree under
// cfg.Output.Dir. Progress lines are written to w. The first failing stage
// aborts the run; files already written stay in place.
func Run(ctx context.Context, cfg types.PipelineConfig, sourcePath string, b bridge.Bridge, fsys afero.Fs, w io.Writer) (Result, error) {
	result := Result{Source: sourcePath}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	mdPath, err := b.ToMarkdown(ctx, sourcePath)
	if err != nil {
		return result, err
	}
	result.Markdown = mdPath
	fmt.Fprintf(w, "converted: %s -> %s (%s)\n", sourcePath, mdPath, b.Name())

	data, err := afero.ReadFile(fsys, mdPath)
	if err != nil {
		return result, apperr.FileSystem("read", mdPath, err)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	outDir := cfg.Output.Dir
	sp, err := split.Split(fsys, string(data), outDir, split.Options{
		Extension: cfg.Output.Extension,
		Collision: cfg.Split.Collision,
		Strict:    cfg.Split.Strict,
	}, w)
	if err != nil {
		return result, err
	}
	result.Sections = len(sp.Sections)
	result.Collisions = sp.Collisions
	result.Ordinal = sp.Ordinal

	if err := manifest.Write(fsys, outDir, sp.Ordinal); err != nil {
		return result, err
	}

	rw, err := rewrite.Tree(fsys, outDir, cfg.Output.IndexName(), sp.Ordinal, w)
	result.Rewrite = rw
	if err != nil {
		return result, err
	}

	if cfg.Catalog.Enabled {
		runID, err := record(ctx, cfg, sourcePath, b.Name(), sp.Sections)
		if err != nil {
			return result, err
		}
		result.RunID = runID
		fmt.Fprintf(w, "recorded: run %d in %s\n", runID, cfg.Catalog.Path)
	}

	fmt.Fprintf(w, "\nSummary: %d sections, %d collisions, %d updated, %d skipped\n",
		result.Sections, len(result.Collisions), rw.Updated, rw.Skipped)
	return result, nil
}

// Entries pairs each written section with its file path. When several
// sections share a slug only the one whose file survived is kept.
func Entries(sections []types.Section, outputDir, indexName string) []catalog.Entry {
	last := make(map[string]int, len(sections))
	for i, s := range sections {
		last[s.Slug] = i
	}
	entries := make([]catalog.Entry, 0, len(last))
	for i, s := range sections {
		if last[s.Slug] != i {
			continue
		}
		entries = append(entries, catalog.Entry{
			Section: s,
			Path:    filepath.Join(outputDir, s.Slug, indexName),
		})
	}
	return entries
}

func record(ctx context.Context, cfg types.PipelineConfig, sourcePath, runner string, sections []types.Section) (int64, error) {
	store, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	run := catalog.Run{Source: sourcePath, OutputDir: cfg.Output.Dir, Runner: runner}
	return store.Record(ctx, run, Entries(sections, cfg.Output.Dir, cfg.Output.IndexName()))
}
