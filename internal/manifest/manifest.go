// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest persists the section Ordinal next to the generated tree
// so the split and rewrite stages can run as separate invocations.
package manifest

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/pkg/types"
)

// FileName is the manifest file written at the root of the output directory.
const FileName = "_ordinal.yaml"

// Entry is one manifest row.
type Entry struct {
	Slug     string `json:"slug" yaml:"slug"`
	Position int    `json:"position" yaml:"position"`
}

// Path returns the manifest location for outputDir.
func Path(outputDir string) string {
	return filepath.Join(outputDir, FileName)
}

// Entries returns the ordinal as manifest rows ordered by position.
func Entries(ordinal types.Ordinal) []Entry {
	entries := make([]Entry, 0, len(ordinal))
	for _, slug := range ordinal.Slugs() {
		entries = append(entries, Entry{Slug: slug, Position: ordinal[slug]})
	}
	return entries
}

// Write stores ordinal in outputDir, creating the directory if needed.
func Write(fsys afero.Fs, outputDir string, ordinal types.Ordinal) error {
	data, err := yaml.Marshal(Entries(ordinal))
	if err != nil {
		return apperr.Malformed("encoding manifest: " + err.Error())
	}
	if err := fsys.MkdirAll(outputDir, 0o755); err != nil {
		return apperr.FileSystem("mkdir", outputDir, err)
	}
	path := Path(outputDir)
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return apperr.FileSystem("write", path, err)
	}
	return nil
}

// Read loads the manifest from outputDir. A missing manifest yields an empty
// Ordinal, so every file falls back to the default position.
func Read(fsys afero.Fs, outputDir string) (types.Ordinal, error) {
	path := Path(outputDir)
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.Ordinal{}, nil
	}
	if err != nil {
		return nil, apperr.FileSystem("read", path, err)
	}

	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, apperr.Malformed(path + ": " + err.Error())
	}
	ordinal := make(types.Ordinal, len(entries))
	for _, e := range entries {
		if e.Slug == "" {
			continue
		}
		ordinal[e.Slug] = e.Position
	}
	return ordinal, nil
}
