// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Runner identifies how the external converters are executed.
type Runner string

const (
	// RunnerToolchain runs asciidoctor and pandoc from PATH.
	RunnerToolchain Runner = "toolchain"

	// RunnerContainer runs both tools inside container images through
	// docker or podman.
	RunnerContainer Runner = "container"
)

// BridgeConfig holds settings for the AsciiDoc to Markdown conversion chain.
type BridgeConfig struct {
	// Runner selects local binaries or container images.
	Runner Runner `json:"runner" yaml:"runner" mapstructure:"runner"`

	// Asciidoctor is the asciidoctor binary name or path.
	Asciidoctor string `json:"asciidoctor" yaml:"asciidoctor" mapstructure:"asciidoctor"`

	// Pandoc is the pandoc binary name or path.
	Pandoc string `json:"pandoc" yaml:"pandoc" mapstructure:"pandoc"`

	// AsciidoctorImage is the image used when Runner is "container".
	AsciidoctorImage string `json:"asciidoctor_image" yaml:"asciidoctor_image" mapstructure:"asciidoctor_image"`

	// PandocImage is the image used when Runner is "container".
	PandocImage string `json:"pandoc_image" yaml:"pandoc_image" mapstructure:"pandoc_image"`

	// Backend is the asciidoctor backend (default "docbook").
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`

	// From and To are the pandoc reader and writer (default "docbook" and
	// "markdown_strict").
	From string `json:"from" yaml:"from" mapstructure:"from"`
	To   string `json:"to" yaml:"to" mapstructure:"to"`

	// Timeout bounds each tool invocation. Zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Validate checks the bridge configuration.
func (c *BridgeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Runner, validation.Required, validation.In(RunnerToolchain, RunnerContainer)),
		validation.Field(&c.Asciidoctor, validation.When(c.Runner == RunnerToolchain, validation.Required)),
		validation.Field(&c.Pandoc, validation.When(c.Runner == RunnerToolchain, validation.Required)),
		validation.Field(&c.AsciidoctorImage, validation.When(c.Runner == RunnerContainer, validation.Required)),
		validation.Field(&c.PandocImage, validation.When(c.Runner == RunnerContainer, validation.Required)),
		validation.Field(&c.Backend, validation.Required),
		validation.Field(&c.From, validation.Required),
		validation.Field(&c.To, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// OutputConfig describes the generated site tree.
type OutputConfig struct {
	// Dir is the directory that receives one subdirectory per section.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Extension is the index file extension without the dot (default "md").
	Extension string `json:"extension" yaml:"extension" mapstructure:"extension"`
}

// IndexName returns the per-section file name, e.g. "index.md".
func (c OutputConfig) IndexName() string {
	return "index." + c.Extension
}

// Validate checks the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Extension, validation.Required, validation.In("md", "mdx")),
	)
}

// SplitConfig holds settings for the title splitter.
type SplitConfig struct {
	// Collision is the duplicate-slug policy (default "overwrite").
	Collision CollisionPolicy `json:"collision" yaml:"collision" mapstructure:"collision"`

	// Strict rejects documents without any top-level heading.
	Strict bool `json:"strict" yaml:"strict" mapstructure:"strict"`
}

// Validate checks the split configuration.
func (c *SplitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Collision, validation.Required,
			validation.In(CollisionOverwrite, CollisionSuffix, CollisionReject)),
	)
}

// CatalogConfig holds settings for the optional run catalog.
type CatalogConfig struct {
	// Enabled records every pipeline run in the catalog.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MaxResults is the default result limit for listings and searches.
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// Validate checks the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
		validation.Field(&c.MaxResults, validation.Min(0)),
	)
}

// PipelineConfig groups all stage configurations for a conversion run.
type PipelineConfig struct {
	Bridge  BridgeConfig  `json:"bridge" yaml:"bridge" mapstructure:"bridge"`
	Output  OutputConfig  `json:"output" yaml:"output" mapstructure:"output"`
	Split   SplitConfig   `json:"split" yaml:"split" mapstructure:"split"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
}

// Validate checks every stage configuration.
func (c *PipelineConfig) Validate() error {
	if err := c.Bridge.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if err := c.Split.Validate(); err != nil {
		return err
	}
	return c.Catalog.Validate()
}

// DefaultPipelineConfig returns the configuration used when no file, flag,
// or environment variable overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Bridge: BridgeConfig{
			Runner:           RunnerToolchain,
			Asciidoctor:      "asciidoctor",
			Pandoc:           "pandoc",
			AsciidoctorImage: "asciidoctor/docker-asciidoctor:latest",
			PandocImage:      "pandoc/core:latest",
			Backend:          "docbook",
			From:             "docbook",
			To:               "markdown_strict",
		},
		Output: OutputConfig{
			Dir:       "output",
			Extension: "md",
		},
		Split: SplitConfig{
			Collision: CollisionOverwrite,
		},
		Catalog: CatalogConfig{
			Path:       ".adoc2site/catalog.db",
			MaxResults: 20,
		},
	}
}
