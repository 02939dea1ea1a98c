// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/internal/verify"
)

var checkCmd = &cobra.Command{
	Use:   "check <output_dir>",
	Short: "Verify a generated docs tree",
	Long: `Check parses every index file under output_dir and reports files whose
front matter does not decode, whose sidebar_position or title is missing,
whose body does not have exactly one level-1 heading matching the title, or
that still contain style="..." attributes. Sidebar positions shared by more
than one file are reported as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), cmd.Flags())
	if err != nil {
		return err
	}

	report, err := verify.Tree(afero.NewOsFs(), args[0], cfg.Output.Extension)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, f := range report.Findings {
			fmt.Fprintln(out, f)
		}
		fmt.Fprintf(out, "\n%d files checked, %d findings\n", report.Checked, len(report.Findings))
	}

	if !report.OK() {
		return apperr.Malformed(fmt.Sprintf("%s: %d findings", args[0], len(report.Findings)))
	}
	return nil
}

func init() {
	checkCmd.Flags().String("ext", "md", "section file extension: md or mdx")
	checkCmd.Flags().Bool("json", false, "print the report as JSON")

	rootCmd.AddCommand(checkCmd)
}
