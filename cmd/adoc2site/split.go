// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/internal/manifest"
	"github.com/pdiddy/adoc2site/internal/split"
)

var splitCmd = &cobra.Command{
	Use:   "split <file.md>",
	Short: "Split a flat Markdown file at its top-level headings",
	Long: `Split writes each "# " section of a Markdown file to
<output>/<slug>/index.md and saves the section order to
<output>/_ordinal.yaml for a later rewrite. Text before the first heading is
dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), cmd.Flags())
	if err != nil {
		return err
	}

	fsys := afero.NewOsFs()
	data, err := afero.ReadFile(fsys, args[0])
	if err != nil {
		return apperr.FileSystem("read", args[0], err)
	}

	res, err := split.Split(fsys, string(data), cfg.Output.Dir, split.Options{
		Extension: cfg.Output.Extension,
		Collision: cfg.Split.Collision,
		Strict:    cfg.Split.Strict,
	}, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := manifest.Write(fsys, cfg.Output.Dir, res.Ordinal); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d sections, %d collisions, manifest %s\n",
		len(res.Sections), len(res.Collisions), manifest.Path(cfg.Output.Dir))
	return nil
}

func init() {
	splitCmd.Flags().StringP("output", "o", "output", "directory that receives one subdirectory per section")
	splitCmd.Flags().String("ext", "md", "section file extension: md or mdx")
	splitCmd.Flags().String("collision", "overwrite", "duplicate heading policy: overwrite, suffix, or reject")
	splitCmd.Flags().Bool("strict", false, "fail when the document has no top-level heading")

	rootCmd.AddCommand(splitCmd)
}
