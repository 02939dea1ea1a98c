// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package split breaks the flattened Markdown produced by the conversion
// chain into one index file per top-level section and records the order in
// which the sections appeared.
package split

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/pkg/types"
)

// headingMarker opens a top-level heading line.
const headingMarker = "# "

// Options controls where and how sections are written.
type Options struct {
	// Extension is the index file extension without the dot. Empty means "md".
	Extension string

	// Collision is the duplicate-slug policy. Empty means overwrite.
	Collision types.CollisionPolicy

	// Strict rejects a document that has no top-level heading.
	Strict bool
}

func (o Options) indexName() string {
	ext := o.Extension
	if ext == "" {
		ext = "md"
	}
	return "index." + ext
}

// Collision records two sections that derived the same slug.
type Collision struct {
	Slug          string
	FirstPosition int
	Position      int
	// Renamed is the slug given to the later section under the suffix
	// policy; empty when the later section overwrote the earlier one.
	Renamed string
}

// Result is the outcome of a split.
type Result struct {
	// Ordinal maps each written slug to its section position.
	Ordinal types.Ordinal

	// Sections lists every section in document order with the slug it was
	// written under.
	Sections []types.Section

	// Collisions lists duplicate slugs met during the split.
	Collisions []Collision
}

// Parse scans document line by line and returns its top-level sections in
// order. Text before the first top-level heading is dropped. Headings of any
// other depth stay in the body of the enclosing section.
func Parse(document string) []types.Section {
	var (
		sections []types.Section
		current  *types.Section
		body     strings.Builder
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.TrimSpace(body.String())
		sections = append(sections, *current)
		body.Reset()
	}

	for line := range strings.Lines(document) {
		if title, ok := headingTitle(line); ok {
			flush()
			current = &types.Section{
				Title:    title,
				Slug:     Slug(title),
				Position: len(sections) + 1,
			}
			continue
		}
		if current != nil {
			body.WriteString(line)
		}
	}
	flush()

	return sections
}

// headingTitle reports whether line is a top-level heading and returns its
// trimmed title. A marker followed only by whitespace is not a heading.
func headingTitle(line string) (string, bool) {
	if !strings.HasPrefix(line, headingMarker) {
		return "", false
	}
	title := strings.TrimSpace(line[len(headingMarker):])
	if title == "" {
		return "", false
	}
	return title, true
}

// Slug derives a directory name from title: every character other than an
// ASCII letter, digit, or dot becomes a hyphen, and the result is
// lower-cased.
func Slug(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Split parses document and writes each section to
// outputDir/<slug>/index.<ext> on fsys, reporting progress to w. Existing
// section directories are reused. A document with no top-level heading
// produces an empty Ordinal and no files unless opts.Strict is set.
func Split(fsys afero.Fs, document, outputDir string, opts Options, w io.Writer) (*Result, error) {
	sections := Parse(document)
	if len(sections) == 0 && opts.Strict {
		return nil, apperr.Malformed("document has no top-level headings")
	}
	for _, s := range sections {
		if s.Slug == "." || s.Slug == ".." {
			return nil, apperr.Malformed(fmt.Sprintf("section %d title %q does not yield a usable directory name", s.Position, s.Title))
		}
	}

	collisions, err := resolveCollisions(sections, opts.Collision)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Ordinal:    make(types.Ordinal, len(sections)),
		Sections:   sections,
		Collisions: collisions,
	}

	for _, c := range collisions {
		if c.Renamed != "" {
			fmt.Fprintf(w, "collision: %s (section %d renamed to %s)\n", c.Slug, c.Position, c.Renamed)
		} else {
			fmt.Fprintf(w, "collision: %s (section %d replaces section %d)\n", c.Slug, c.Position, c.FirstPosition)
		}
	}

	for _, s := range sections {
		dir := filepath.Join(outputDir, s.Slug)
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return result, apperr.FileSystem("mkdir", dir, err)
		}

		path := filepath.Join(dir, opts.indexName())
		if err := afero.WriteFile(fsys, path, []byte(s.Content()), 0o644); err != nil {
			return result, apperr.FileSystem("write", path, err)
		}

		result.Ordinal[s.Slug] = s.Position
		fmt.Fprintf(w, "created: %s\n", path)
	}

	return result, nil
}

// resolveCollisions applies policy to sections in place and returns the
// duplicates it found.
func resolveCollisions(sections []types.Section, policy types.CollisionPolicy) ([]Collision, error) {
	firstSeen := make(map[string]int, len(sections))
	taken := make(map[string]bool, len(sections))
	for _, s := range sections {
		taken[s.Slug] = true
	}

	var collisions []Collision
	for i := range sections {
		s := &sections[i]
		first, dup := firstSeen[s.Slug]
		if !dup {
			firstSeen[s.Slug] = s.Position
			continue
		}

		c := Collision{Slug: s.Slug, FirstPosition: first, Position: s.Position}
		switch policy {
		case types.CollisionReject:
			return nil, apperr.Malformed(fmt.Sprintf(
				"sections %d and %d both map to %q", first, s.Position, s.Slug))
		case types.CollisionSuffix:
			c.Renamed = nextFreeSlug(s.Slug, taken)
			taken[c.Renamed] = true
			firstSeen[c.Renamed] = s.Position
			s.Slug = c.Renamed
		}
		collisions = append(collisions, c)
	}
	return collisions, nil
}

func nextFreeSlug(slug string, taken map[string]bool) string {
	for n := 2; ; n++ {
		candidate := slug + "-" + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}

