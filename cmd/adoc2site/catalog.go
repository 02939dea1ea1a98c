// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/adoc2site/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the run catalog",
	Long: `Catalog reads the SQLite database that convert --catalog writes: one row
per run and one per generated section, with full-text search over section
titles and bodies.`,
}

// --- runs subcommand ---

var catalogRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent conversion runs",
	Args:  cobra.NoArgs,
	RunE:  runCatalogRuns,
}

func runCatalogRuns(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return encodeJSON(out, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-5s  %-20s  %-8s  %-18s  %-30s  %s\n",
		"ID", "When", "Sections", "Runner", "Source", "Output")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for _, r := range runs {
		fmt.Fprintf(out, "%-5d  %-20s  %-8d  %-18s  %-30s  %s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Sections,
			truncate(r.Runner, 18), truncate(r.Source, 30), r.OutputDir)
	}
	return nil
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search sections of the latest run",
	Long: `Search matches the query against section titles and bodies of the most
recent run. When the sqlite3 driver is built with FTS5 the query uses FTS5
syntax and results are ranked; otherwise it is a substring match.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	hits, err := store.Search(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return encodeJSON(out, hits)
	}
	if len(hits) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintf(out, "%-4s  %-3s  %-40s  %s\n", "Rank", "Pos", "Title", "Path")
	fmt.Fprintln(out, strings.Repeat("-", 90))
	for i, h := range hits {
		fmt.Fprintf(out, "%-4d  %-3d  %-40s  %s\n", i+1, h.Position, truncate(h.Title, 40), h.Path)
	}
	fmt.Fprintf(out, "\n%d results\n", len(hits))
	return nil
}

func openCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	cfg, err := loadConfig(viper.GetViper(), cmd.Flags())
	if err != nil {
		return nil, err
	}
	store, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	if !store.FullText() {
		logger.Debug("catalog: FTS5 unavailable, using substring search")
	}
	return store, nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	catalogCmd.PersistentFlags().String("catalog-path", ".adoc2site/catalog.db", "catalog database file")
	catalogCmd.PersistentFlags().Int("limit", 20, "maximum number of rows to print")
	catalogCmd.PersistentFlags().Bool("json", false, "print results as JSON")

	catalogCmd.AddCommand(catalogRunsCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	rootCmd.AddCommand(catalogCmd)
}
