// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/adoc2site/internal/bridge"
	"github.com/pdiddy/adoc2site/internal/pipeline"
	"github.com/pdiddy/adoc2site/internal/watch"
	"github.com/pdiddy/adoc2site/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <source.adoc>",
	Short: "Convert an AsciiDoc document into a Docusaurus docs tree",
	Long: `Convert runs asciidoctor (AsciiDoc to DocBook) and pandoc (DocBook to
Markdown), writing index.xml and index.md next to the source. The Markdown is
split at every "# " heading into <output>/<slug>/index.md, the section order
is saved to <output>/_ordinal.yaml, and each file gets sidebar_position and
title front matter.

With --watch the conversion re-runs whenever an .adoc file in the source
directory changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), cmd.Flags())
	if err != nil {
		return err
	}
	source := args[0]

	ctx, cancel := signalContext()
	defer cancel()

	b, err := bridge.New(ctx, cfg.Bridge, bridge.WithDiagnostics(os.Stderr))
	if err != nil {
		return err
	}
	if err := b.Check(ctx); err != nil {
		return err
	}
	logger.Debug("bridge ready", slog.String("runner", b.Name()))

	fsys := afero.NewOsFs()
	run := func(ctx context.Context) error {
		return convertOnce(ctx, cfg, source, b, fsys, cmd.OutOrStdout())
	}

	watching, _ := cmd.Flags().GetBool("watch")
	if !watching {
		return run(ctx)
	}

	if err := run(ctx); err != nil {
		logger.Error("initial conversion failed", slog.String("error", err.Error()))
	}
	debounce, _ := cmd.Flags().GetDuration("debounce")
	return watch.Watch(ctx, source, debounce, logger, run)
}

func convertOnce(ctx context.Context, cfg types.PipelineConfig, source string, b bridge.Bridge, fsys afero.Fs, w io.Writer) error {
	start := time.Now()
	res, err := pipeline.Run(ctx, cfg, source, b, fsys, w)
	if err != nil {
		return err
	}
	logger.Info("conversion finished",
		slog.String("source", source),
		slog.String("output", cfg.Output.Dir),
		slog.Int("sections", res.Sections),
		slog.Int("collisions", len(res.Collisions)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func init() {
	convertCmd.Flags().StringP("output", "o", "output", "directory that receives one subdirectory per section")
	convertCmd.Flags().String("ext", "md", "section file extension: md or mdx")
	convertCmd.Flags().String("runner", "toolchain", "how to run the converters: toolchain or container")
	convertCmd.Flags().Duration("timeout", 0, "limit for each converter invocation (0 = none)")
	convertCmd.Flags().String("collision", "overwrite", "duplicate heading policy: overwrite, suffix, or reject")
	convertCmd.Flags().Bool("strict", false, "fail when the document has no top-level heading")
	convertCmd.Flags().Bool("catalog", false, "record the run in the SQLite catalog")
	convertCmd.Flags().String("catalog-path", ".adoc2site/catalog.db", "catalog database file")
	convertCmd.Flags().Bool("watch", false, "re-run when an .adoc file next to the source changes")
	convertCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a watched change triggers a run")

	rootCmd.AddCommand(convertCmd)
}
