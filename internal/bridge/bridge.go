// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bridge turns an AsciiDoc source into one flat Markdown file by
// chaining asciidoctor (AsciiDoc to DocBook) and pandoc (DocBook to
// Markdown). The tools run either from PATH or inside container images.
package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/internal/container"
	"github.com/pdiddy/adoc2site/pkg/types"
)

const (
	docBookExt  = ".xml"
	markdownExt = ".md"
)

// Bridge converts an AsciiDoc document to Markdown. Different runners
// (local toolchain, container images) implement this interface.
type Bridge interface {
	// Name identifies the runner in logs.
	Name() string

	// Check verifies that both converters can be invoked.
	Check(ctx context.Context) error

	// ToMarkdown converts the document at sourcePath and returns the path of
	// the Markdown file written next to it. The intermediate DocBook file is
	// left beside the source as well.
	ToMarkdown(ctx context.Context, sourcePath string) (string, error)
}

// Option configures a Bridge.
type Option func(*options)

type options struct {
	diag io.Writer
}

// WithDiagnostics copies converter stderr output to w as it is produced.
func WithDiagnostics(w io.Writer) Option {
	return func(o *options) {
		o.diag = w
	}
}

func buildOptions(opts []Option) options {
	o := options{diag: io.Discard}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// New returns the Bridge selected by cfg.Runner. The container runner
// detects docker or podman at construction time.
func New(ctx context.Context, cfg types.BridgeConfig, opts ...Option) (Bridge, error) {
	switch cfg.Runner {
	case types.RunnerToolchain, "":
		return NewToolchain(cfg, opts...), nil
	case types.RunnerContainer:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, apperr.ExternalTool("container runtime", err)
		}
		return NewContainer(cfg, rt, opts...), nil
	default:
		return nil, apperr.Config(fmt.Errorf("unknown runner %q", cfg.Runner))
	}
}

// SiblingPath replaces the extension of path with ext.
func SiblingPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// executor abstracts local process execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec = &osExecutor{}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// toolError attaches captured stderr to a failed invocation. The cause stays
// in the chain so the exit status can be recovered.
func toolError(err error, stderr *bytes.Buffer) error {
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, msg)
}

// requireSource fails early when the source document cannot be read.
func requireSource(sourcePath string) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return apperr.FileSystem("stat", sourcePath, err)
	}
	if info.IsDir() {
		return apperr.FileSystem("stat", sourcePath, errors.New("source is a directory"))
	}
	return nil
}
