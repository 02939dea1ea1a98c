// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "sort"

// DefaultPosition is the sidebar position given to a section whose slug has
// no entry in the Ordinal.
const DefaultPosition = 1

// Section is one top-level part of the flattened Markdown document: the
// heading line and everything up to the next top-level heading.
type Section struct {
	// Title is the heading text after the "# " marker, trimmed.
	Title string `json:"title" yaml:"title"`

	// Slug is the directory name derived from Title. Not unique.
	Slug string `json:"slug" yaml:"slug"`

	// Body is the section content after the heading line, trimmed.
	Body string `json:"body" yaml:"-"`

	// Position is the 1-based order of the section in the document.
	Position int `json:"position" yaml:"position"`
}

// Content returns the text written to the section's index file.
func (s Section) Content() string {
	return "# " + s.Title + "\n" + s.Body
}

// Ordinal maps a section slug to its 1-based position in the source
// document. It is the only state passed from the splitter to the rewriter.
type Ordinal map[string]int

// Position returns the position recorded for slug, or DefaultPosition.
func (o Ordinal) Position(slug string) int {
	if p, ok := o[slug]; ok {
		return p
	}
	return DefaultPosition
}

// Slugs returns the recorded slugs ordered by position, then by name.
func (o Ordinal) Slugs() []string {
	slugs := make([]string, 0, len(o))
	for s := range o {
		slugs = append(slugs, s)
	}
	sort.Slice(slugs, func(i, j int) bool {
		if o[slugs[i]] != o[slugs[j]] {
			return o[slugs[i]] < o[slugs[j]]
		}
		return slugs[i] < slugs[j]
	})
	return slugs
}

// CollisionPolicy selects what the splitter does when two sections derive
// the same slug.
type CollisionPolicy string

const (
	// CollisionOverwrite lets the later section replace the earlier one's
	// file and Ordinal entry.
	CollisionOverwrite CollisionPolicy = "overwrite"

	// CollisionSuffix appends -2, -3, ... to later duplicates.
	CollisionSuffix CollisionPolicy = "suffix"

	// CollisionReject fails the split before anything is written.
	CollisionReject CollisionPolicy = "reject"
)
