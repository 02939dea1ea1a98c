// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rewrite prepares split section files for Docusaurus: it prepends
// the sidebar front matter and converts inline CSS style attributes into the
// object syntax MDX expects.
package rewrite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/spf13/afero"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/pkg/types"
)

// Result holds the outcome of rewriting an output tree.
type Result struct {
	Updated int
	Skipped int
}

// Total returns the number of index files visited.
func (r Result) Total() int {
	return r.Updated + r.Skipped
}

// Apply returns content with its inline styles converted and the front
// matter block prepended. The display title is the first line with heading
// markers and surrounding spaces removed; the heading line itself stays in
// the body.
func Apply(content string, position int) string {
	content = Styles(content)
	firstLine, _, _ := strings.Cut(content, "\n")
	title := strings.Trim(firstLine, "# \n")

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "sidebar_position: %d\n", position)
	fmt.Fprintf(&b, "title: %s\n", title)
	b.WriteString("---\n\n")
	b.WriteString(content)
	return b.String()
}

// HasFrontMatter reports whether content already opens with a front matter
// block. A delimited block that fails to decode still counts.
func HasFrontMatter(content []byte) bool {
	var meta map[string]any
	_, err := frontmatter.MustParse(bytes.NewReader(content), &meta)
	return !errors.Is(err, frontmatter.ErrNotFound)
}

// Tree walks outputDir and rewrites every file named indexName in place.
// The sidebar position comes from ordinal, keyed by the file's parent
// directory name. Files that already carry front matter are skipped, so
// running Tree twice leaves the output unchanged. A missing outputDir is
// not an error.
func Tree(fsys afero.Fs, outputDir, indexName string, ordinal types.Ordinal, w io.Writer) (Result, error) {
	var result Result

	if _, err := fsys.Stat(outputDir); errors.Is(err, os.ErrNotExist) {
		return result, nil
	}

	err := afero.Walk(fsys, outputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return apperr.FileSystem("walk", path, err)
		}
		if info.IsDir() || info.Name() != indexName {
			return nil
		}

		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return apperr.FileSystem("read", path, err)
		}

		if HasFrontMatter(data) {
			fmt.Fprintf(w, "skipped: %s (front matter present)\n", path)
			result.Skipped++
			return nil
		}

		position := ordinal.Position(filepath.Base(filepath.Dir(path)))
		out := Apply(string(data), position)
		if err := afero.WriteFile(fsys, path, []byte(out), info.Mode().Perm()); err != nil {
			return apperr.FileSystem("write", path, err)
		}

		fmt.Fprintf(w, "updated: %s\n", path)
		result.Updated++
		return nil
	})
	return result, err
}
