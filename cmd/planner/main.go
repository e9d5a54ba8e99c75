// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the planner CLI. It turns degree
// audits into the list of requirements a student still has to pick and
// keeps a history of imported audits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Najam-Usman/uiuc-course-planner/internal/secrets"
	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// logger is built in PersistentPreRunE; --verbose switches it to debug.
	logger = zap.NewNop()

	// cfg is the merged configuration: defaults, config file, env, flags.
	cfg = types.DefaultConfig()

	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets = secrets.Secrets{}
)

// rootCmd is the base command for the planner CLI.
var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Find the requirements left on a degree audit",
	Long: `planner reads a parsed degree audit and reports the general-education
categories and major course groups that still need something, with the
courses that can satisfy each one.

Audits come from an external PDF parser (see "planner parse") as JSON or
YAML. Imported audits can be saved per user and reloaded later.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l

		c, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = c

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
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
	pf.String("config", "", "config file (default: ./planner.yaml or ~/.config/planner/planner.yaml)")
	pf.BoolP("verbose", "v", false, "enable debug logging")
	pf.String("data-dir", "", "directory holding the audit database (default \"data\")")
	pf.String("user", "", "user the audits belong to (default \"demo\")")

	viper.BindPFlag("store.data_dir", pf.Lookup("data-dir"))
	viper.BindPFlag("store.user_id", pf.Lookup("user"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("planner")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "planner"))
		}
	}

	viper.SetEnvPrefix("PLANNER")
	viper.SetEnvKeyReplacer(envKeyReplacer())
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// envKeyReplacer maps "parser.base_url" to PLANNER_PARSER_BASE_URL.
func envKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	l, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// loadConfig overlays the config file, PLANNER_* environment variables, and
// bound flags on DefaultConfig.
func loadConfig(v *viper.Viper) (types.Config, error) {
	c := types.DefaultConfig()
	setDefaults(v, c)
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, c types.Config) {
	v.SetDefault("store.data_dir", c.Store.DataDir)
	v.SetDefault("store.user_id", c.Store.UserID)
	v.SetDefault("parser.backend", string(c.Parser.Backend))
	v.SetDefault("parser.python", c.Parser.Python)
	v.SetDefault("parser.parser_dir", c.Parser.ParserDir)
	v.SetDefault("parser.image", c.Parser.Image)
	v.SetDefault("parser.base_url", c.Parser.BaseURL)
	v.SetDefault("parser.max_retries", c.Parser.MaxRetries)
	v.SetDefault("parser.timeout", c.Parser.Timeout)
	v.SetDefault("parser.user_agent", c.Parser.UserAgent)
	v.SetDefault("report.search_base_url", c.Report.SearchBaseURL)
	v.SetDefault("report.plain", c.Report.Plain)
	v.SetDefault("batch.workers", c.Batch.Workers)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
