// Package main implements the duecast CLI.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/duecast/internal/app"
	"github.com/sandeepkv93/duecast/internal/config"
)

var (
	configPath string
	dataDir    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "duecast",
	Short:        "duecast - tasks with due dates that learn from how late you finish",
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/duecast/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding the database, lock and log")
}

func defaultConfigPath() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); dir != "" {
		return filepath.Join(dir, "duecast", config.FileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "duecast", config.FileName)
}

// loadSettings layers the config file, DUECAST_* variables and flags over the
// defaults, in that order.
func loadSettings() (config.Settings, error) {
	path := configPath
	if path == "" {
		path = defaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Settings{}, err
	}
	cfg = config.FromEnv(cfg)
	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}
	return cfg, nil
}

// openApp opens the app with CLI defaults: logs go to stderr.
func openApp(opts app.Options) (*app.App, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "duecast: ", 0)
	}
	a, err := app.New(cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("open duecast: %w", err)
	}
	return a, nil
}
