// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/adoc2site/internal/manifest"
	"github.com/pdiddy/adoc2site/internal/rewrite"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <output_dir>",
	Short: "Add Docusaurus front matter to split section files",
	Long: `Rewrite walks output_dir and prepends sidebar_position and title front
matter to every index file, converting inline style="..." attributes to the
object syntax MDX expects. Positions come from output_dir/_ordinal.yaml;
sections missing from it get position 1. Files that already start with front
matter are left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), cmd.Flags())
	if err != nil {
		return err
	}
	cfg.Output.Dir = args[0]

	fsys := afero.NewOsFs()
	ordinal, err := manifest.Read(fsys, cfg.Output.Dir)
	if err != nil {
		return err
	}
	if len(ordinal) == 0 {
		logger.Warn("no manifest found, every section gets the default position",
			"manifest", manifest.Path(cfg.Output.Dir))
	}

	res, err := rewrite.Tree(fsys, cfg.Output.Dir, cfg.Output.IndexName(), ordinal, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d updated, %d skipped\n", res.Updated, res.Skipped)
	return nil
}

func init() {
	rewriteCmd.Flags().String("ext", "md", "section file extension: md or mdx")

	rootCmd.AddCommand(rewriteCmd)
}
