package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/concordance/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage concordance configuration",
	Long: `Manage concordance configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CONCORDANCE_*, e.g. CONCORDANCE_HTTP_TIMEOUT=1m)
3. Config file (~/.concordance/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", used)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n\n")
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}

		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long:  `Create ~/.concordance/config.yaml (or the --config path) holding every option at its default value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			dir, err := configDir()
			if err != nil {
				return err
			}
			path = filepath.Join(dir, "config.yaml")
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'concordance config show' to view it, or delete it first to recreate", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}

		if err := writeDefaultConfig(path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created default configuration: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

const configHeader = `# Concordance configuration
#
# Configuration hierarchy (highest to lowest priority):
#   1. CLI flags
#   2. Environment variables (CONCORDANCE_*)
#   3. This config file
#   4. Built-in defaults
#
# tokenizer.abbreviations lists tokens that are kept as words and never
# end a sentence. Only "i.e." is treated this way by default.

`

// writeDefaultConfig writes the commented default configuration to path
func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
