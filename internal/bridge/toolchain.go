// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bridge

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/pkg/types"
)

// Toolchain runs asciidoctor and pandoc from the local PATH.
type Toolchain struct {
	cfg  types.BridgeConfig
	exec executor
	opts options
}

// NewToolchain creates a bridge that invokes the binaries named in cfg.
func NewToolchain(cfg types.BridgeConfig, opts ...Option) *Toolchain {
	return &Toolchain{cfg: cfg, exec: defaultExec, opts: buildOptions(opts)}
}

// Name returns "toolchain".
func (t *Toolchain) Name() string { return string(types.RunnerToolchain) }

// Check reports the first converter binary missing from PATH.
func (t *Toolchain) Check(_ context.Context) error {
	for _, bin := range []string{t.cfg.Asciidoctor, t.cfg.Pandoc} {
		if _, err := t.exec.LookPath(bin); err != nil {
			return apperr.ExternalTool(bin, fmt.Errorf("not found on PATH: %w", err))
		}
	}
	return nil
}

// ToMarkdown runs both conversion stages and returns the Markdown path.
func (t *Toolchain) ToMarkdown(ctx context.Context, sourcePath string) (string, error) {
	xmlPath, err := t.ToDocBook(ctx, sourcePath)
	if err != nil {
		return "", err
	}
	return t.DocBookToMarkdown(ctx, xmlPath)
}

// ToDocBook converts sourcePath with asciidoctor and returns the path of the
// sibling .xml file.
func (t *Toolchain) ToDocBook(ctx context.Context, sourcePath string) (string, error) {
	if err := requireSource(sourcePath); err != nil {
		return "", err
	}
	xmlPath := SiblingPath(sourcePath, docBookExt)
	args := []string{"-b", t.cfg.Backend, sourcePath, "-o", xmlPath}
	if err := t.run(ctx, t.cfg.Asciidoctor, args); err != nil {
		return "", err
	}
	return xmlPath, nil
}

// DocBookToMarkdown converts xmlPath with pandoc and returns the path of the
// sibling .md file.
func (t *Toolchain) DocBookToMarkdown(ctx context.Context, xmlPath string) (string, error) {
	mdPath := SiblingPath(xmlPath, markdownExt)
	args := []string{"-f", t.cfg.From, "-t", t.cfg.To, xmlPath, "-o", mdPath}
	if err := t.run(ctx, t.cfg.Pandoc, args); err != nil {
		return "", err
	}
	return mdPath, nil
}

func (t *Toolchain) run(ctx context.Context, bin string, args []string) error {
	ctx, cancel := withTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	var stderr bytes.Buffer
	if err := t.exec.Run(ctx, bin, args, io.MultiWriter(&stderr, t.opts.diag)); err != nil {
		return apperr.ExternalTool(bin, toolError(err, &stderr))
	}
	return nil
}
