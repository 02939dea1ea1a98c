// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/pkg/types"
)

// flagKeys maps command-line flags to configuration keys. A flag set on the
// command line overrides the config file and environment.
var flagKeys = map[string]string{
	"runner":       "bridge.runner",
	"timeout":      "bridge.timeout",
	"output":       "output.dir",
	"ext":          "output.extension",
	"collision":    "split.collision",
	"strict":       "split.strict",
	"catalog":      "catalog.enabled",
	"catalog-path": "catalog.path",
	"limit":        "catalog.max_results",
}

// configure prepares v to read ADOC2SITE_* variables and registers the
// built-in defaults.
func configure(v *viper.Viper) {
	v.SetEnvPrefix("ADOC2SITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
}

// setDefaults registers every configuration key so that environment
// variables are seen by Unmarshal.
func setDefaults(v *viper.Viper) {
	d := types.DefaultPipelineConfig()

	v.SetDefault("bridge.runner", string(d.Bridge.Runner))
	v.SetDefault("bridge.asciidoctor", d.Bridge.Asciidoctor)
	v.SetDefault("bridge.pandoc", d.Bridge.Pandoc)
	v.SetDefault("bridge.asciidoctor_image", d.Bridge.AsciidoctorImage)
	v.SetDefault("bridge.pandoc_image", d.Bridge.PandocImage)
	v.SetDefault("bridge.backend", d.Bridge.Backend)
	v.SetDefault("bridge.from", d.Bridge.From)
	v.SetDefault("bridge.to", d.Bridge.To)
	v.SetDefault("bridge.timeout", d.Bridge.Timeout)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.extension", d.Output.Extension)

	v.SetDefault("split.collision", string(d.Split.Collision))
	v.SetDefault("split.strict", d.Split.Strict)

	v.SetDefault("catalog.enabled", d.Catalog.Enabled)
	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.max_results", d.Catalog.MaxResults)
}

// loadConfig merges defaults, config file, environment and the flags of
// the running command into a validated PipelineConfig.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet) (types.PipelineConfig, error) {
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return types.PipelineConfig{}, apperr.Config(err)
			}
		}
	}

	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, apperr.Config(err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, apperr.Config(err)
	}
	return cfg, nil
}
