package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// A missing .env file is fine, the environment may already be set.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
}

// newRootCmd creates the top-level "kepsek" command and registers all subcommands.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "kepsek",
		Short:         "Asisten AI untuk kepala sekolah",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv("KEPSEK_CONFIG"),
		"path to the YAML config file (default: <user config dir>/kepsek/config.yaml)")

	root.AddCommand(
		newServeCmd(flags),
		newPromptCmd(),
		newAskCmd(flags),
	)

	return root
}

// load reads the config selected by the flags. The default location may be absent; an explicitly given
// file must exist.
func (f *rootFlags) load() (config, error) {
	if f.configPath != "" {
		return loadConfig(f.configPath, true)
	}

	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return config{}, fmt.Errorf("error getting user config dir: %w", err)
	}
	return loadConfig(filepath.Join(cfgDir, "kepsek", "config.yaml"), false)
}

func newLogger(cfg config) (*slog.Logger, error) {
	level, err := cfg.logLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}
