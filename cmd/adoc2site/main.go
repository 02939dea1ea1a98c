// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the adoc2site CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// logger receives diagnostics. Progress lines go to stdout.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// rootCmd is the base command for the adoc2site CLI.
var rootCmd = &cobra.Command{
	Use:   "adoc2site",
	Short: "Turn an AsciiDoc book into a Docusaurus docs tree",
	Long: `adoc2site converts an AsciiDoc document to Markdown through asciidoctor
and pandoc, splits the result into one directory per top-level heading, and
prepends the sidebar front matter Docusaurus reads.

The full pipeline is the convert command. split, rewrite, and check run a
single stage against files already on disk.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("config loaded", slog.String("file", used))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./adoc2site.yaml or ~/.config/adoc2site/adoc2site.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug diagnostics")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("adoc2site")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "adoc2site"))
		}
	}

	configure(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || cfgFile != "" {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("adoc2site failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
