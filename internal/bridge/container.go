// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bridge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/internal/container"
	"github.com/pdiddy/adoc2site/pkg/types"
)

// workdir is where the source directory is mounted inside the containers.
const workdir = "/documents"

// Container runs both converters inside container images. The directory
// holding the source document is mounted so include directives resolve and
// the intermediate files land next to the source, as with Toolchain.
type Container struct {
	cfg     types.BridgeConfig
	runtime container.Runtime
	opts    options
}

// NewContainer creates a bridge that runs the images named in cfg through rt.
func NewContainer(cfg types.BridgeConfig, rt container.Runtime, opts ...Option) *Container {
	return &Container{cfg: cfg, runtime: rt, opts: buildOptions(opts)}
}

// Name returns "container/<runtime>".
func (c *Container) Name() string {
	return string(types.RunnerContainer) + "/" + c.runtime.Name()
}

// Check verifies that both images exist locally.
func (c *Container) Check(ctx context.Context) error {
	for _, image := range []string{c.cfg.AsciidoctorImage, c.cfg.PandocImage} {
		if err := c.runtime.ImageExists(ctx, image); err != nil {
			return apperr.ExternalTool(image, fmt.Errorf("image not available in %s: %w", c.runtime.Name(), err))
		}
	}
	return nil
}

// ToMarkdown runs both conversion stages and returns the Markdown path.
func (c *Container) ToMarkdown(ctx context.Context, sourcePath string) (string, error) {
	if err := requireSource(sourcePath); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", apperr.FileSystem("resolve", sourcePath, err)
	}
	dir, name := filepath.Split(abs)
	xmlName := SiblingPath(name, docBookExt)
	mdName := SiblingPath(xmlName, markdownExt)
	mounts := []container.Mount{{Source: filepath.Clean(dir), Target: workdir}}

	asciidoctor := container.RunSpec{
		Image:   c.cfg.AsciidoctorImage,
		Args:    []string{"asciidoctor", "-b", c.cfg.Backend, name, "-o", xmlName},
		Mounts:  mounts,
		Workdir: workdir,
	}
	if err := c.run(ctx, asciidoctor); err != nil {
		return "", err
	}

	pandoc := container.RunSpec{
		Image:   c.cfg.PandocImage,
		Args:    []string{"-f", c.cfg.From, "-t", c.cfg.To, xmlName, "-o", mdName},
		Mounts:  mounts,
		Workdir: workdir,
	}
	if err := c.run(ctx, pandoc); err != nil {
		return "", err
	}

	return filepath.Join(dir, mdName), nil
}

func (c *Container) run(ctx context.Context, spec container.RunSpec) error {
	ctx, cancel := withTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var stderr bytes.Buffer
	if err := c.runtime.Run(ctx, spec, nil, io.Discard, io.MultiWriter(&stderr, c.opts.diag)); err != nil {
		return apperr.ExternalTool(spec.Image, toolError(err, &stderr))
	}
	return nil
}
