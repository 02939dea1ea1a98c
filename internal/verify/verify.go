// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify inspects a generated site tree and reports section files
// that Docusaurus would render incorrectly.
package verify

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/internal/rewrite"
)

// Finding is one problem found in a section file.
type Finding struct {
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

func (f Finding) String() string {
	return f.Path + ": " + f.Message
}

// Report is the outcome of checking a tree.
type Report struct {
	Checked  int       `json:"checked" yaml:"checked"`
	Findings []Finding `json:"findings" yaml:"findings"`
}

// OK reports whether no findings were recorded.
func (r Report) OK() bool {
	return len(r.Findings) == 0
}

// Meta is the front matter the rewriter emits.
type Meta struct {
	SidebarPosition int    `yaml:"sidebar_position"`
	Title           string `yaml:"title"`
}

var md = goldmark.New()

// Tree checks every index.<ext> file under outputDir.
func Tree(fsys afero.Fs, outputDir, ext string) (Report, error) {
	var report Report
	indexName := "index." + ext
	positions := make(map[int][]string)

	if _, err := fsys.Stat(outputDir); err != nil {
		return report, apperr.FileSystem("stat", outputDir, err)
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
		report.Checked++

		meta, problems := File(data)
		for _, msg := range problems {
			report.Findings = append(report.Findings, Finding{Path: path, Message: msg})
		}
		if meta.SidebarPosition > 0 {
			positions[meta.SidebarPosition] = append(positions[meta.SidebarPosition], path)
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	report.Findings = append(report.Findings, duplicatePositions(positions)...)
	return report, nil
}

// File checks the content of one section file and returns its decoded front
// matter together with a message per problem.
func File(data []byte) (Meta, []string) {
	var (
		meta     Meta
		problems []string
	)

	body, err := frontmatter.MustParse(bytes.NewReader(data), &meta)
	switch {
	case errors.Is(err, frontmatter.ErrNotFound):
		return meta, []string{"missing front matter"}
	case err != nil:
		return meta, []string{"front matter does not decode: " + err.Error()}
	}

	if meta.SidebarPosition <= 0 {
		problems = append(problems, fmt.Sprintf("sidebar_position must be positive, got %d", meta.SidebarPosition))
	}
	if strings.TrimSpace(meta.Title) == "" {
		problems = append(problems, "empty title")
	}

	headings := topHeadings(body)
	switch len(headings) {
	case 0:
		problems = append(problems, "no level-1 heading")
	case 1:
		if meta.Title != "" && headings[0] != meta.Title {
			problems = append(problems, fmt.Sprintf("heading %q does not match title %q", headings[0], meta.Title))
		}
	default:
		problems = append(problems, fmt.Sprintf("%d level-1 headings, want 1", len(headings)))
	}

	if left := rewrite.InlineStyles(string(body)); len(left) > 0 {
		problems = append(problems, fmt.Sprintf("%d inline style attribute(s) not converted", len(left)))
	}
	return meta, problems
}

// topHeadings returns the raw text of each level-1 heading in source.
func topHeadings(source []byte) []string {
	doc := md.Parser().Parse(text.NewReader(source))

	var titles []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if h.Level == 1 {
			titles = append(titles, rawText(h, source))
		}
		return ast.WalkSkipChildren, nil
	})
	return titles
}

func rawText(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimSpace(b.String())
}

func duplicatePositions(positions map[int][]string) []Finding {
	keys := make([]int, 0, len(positions))
	for p, paths := range positions {
		if len(paths) > 1 {
			keys = append(keys, p)
		}
	}
	sort.Ints(keys)

	var findings []Finding
	for _, p := range keys {
		paths := positions[p]
		sort.Strings(paths)
		for i, path := range paths {
			others := make([]string, 0, len(paths)-1)
			others = append(others, paths[:i]...)
			others = append(others, paths[i+1:]...)
			findings = append(findings, Finding{
				Path:    path,
				Message: fmt.Sprintf("sidebar_position %d also used by %s", p, strings.Join(others, ", ")),
			})
		}
	}
	return findings
}
