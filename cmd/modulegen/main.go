// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the modulegen CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/modulegen/internal/logging"
	"github.com/pdiddy/modulegen/internal/secrets"
	"github.com/pdiddy/modulegen/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Store

	// logger is built in PersistentPreRunE and synced on exit.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "modulegen",
	Short: "Generate structured educational modules with a text-generation backend",
	Long: `modulegen turns an uploaded document or a short topic into an educational
module: summary, introduction, learning units, glossary, links, conclusion and
references. Each section is produced by one backend request; identical requests
in the same process are served from an in-memory cache.

Use generate to build modules, review to proofread text, and sections to list
the section catalogue.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logger = l

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			names := s.Names()
			sort.Strings(names)
			logger.Debug("loaded secrets", zap.Strings("names", names))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./modulegen.yaml or ~/.config/modulegen/modulegen.yaml)")
	pf.String("secrets-dir", secrets.DefaultDir, "directory holding API key files")
	pf.BoolP("verbose", "v", false, "enable debug logging")
	pf.String("provider", "", "generation backend: openai, anthropic, gemini or static")
	pf.String("model", "", "model identifier sent to the backend")
	pf.String("base-url", "", "override the backend endpoint (OpenAI-compatible services)")
	pf.String("language", "", "output language (default Portuguese)")

	_ = viper.BindPFlag("backend.provider", pf.Lookup("provider"))
	_ = viper.BindPFlag("backend.model", pf.Lookup("model"))
	_ = viper.BindPFlag("backend.base_url", pf.Lookup("base-url"))
	_ = viper.BindPFlag("language", pf.Lookup("language"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("modulegen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "modulegen"))
		}
	}

	viper.SetEnvPrefix("MODULEGEN")
	viper.SetEnvKeyReplacer(envReplacer())
	viper.AutomaticEnv()
	setDefaults(viper.GetViper(), types.GenerationConfig{}.WithDefaults())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func envReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// setDefaults registers every config key so environment variables reach
// keys absent from the config file.
func setDefaults(v *viper.Viper, d types.GenerationConfig) {
	v.SetDefault("language", d.Language)
	v.SetDefault("backend.provider", string(d.Backend.Provider))
	// The model default depends on the provider and is filled by WithDefaults.
	v.SetDefault("backend.model", "")
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("backend.temperature", d.Backend.Temperature)
	v.SetDefault("backend.max_tokens", d.Backend.MaxTokens)
	v.SetDefault("backend.rate_limit_retries", d.Backend.RateLimitRetries)
	v.SetDefault("cache.driver", string(d.Cache.Driver))
	v.SetDefault("cache.cache_diagnostics", d.Cache.CacheDiagnostics)
	v.SetDefault("render.output_dir", d.Render.OutputDir)
	v.SetDefault("render.formats", d.Render.Formats)
	v.SetDefault("render.footer_label", d.Render.FooterLabel)
	v.SetDefault("source.pdf_image", d.Source.PDFImage)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.development", d.Logging.Development)
}

// loadConfig decodes the merged viper settings.
func loadConfig() (types.GenerationConfig, error) {
	var cfg types.GenerationConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg.WithDefaults(), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
