package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/concordance/internal/logger"
	"github.com/ppiankov/concordance/internal/model"
	"github.com/ppiankov/concordance/internal/pipeline"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "concordance",
	Short: "Concordance - alphabetical word index with sentence locations",
	Long: `Concordance reads a text document and lists every distinct word in
alphabetical order with how often it occurs and the sentences it occurs in.

Words are lowercased and stripped of punctuation. A sentence ends at any
word containing a period, except abbreviations such as "i.e.".

Sources can be local files, http(s) URLs (HTML is reduced to its visible
text) or "-" for standard input.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "concordance v%s\n", pipeline.Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.concordance/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := registerDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if dir, err := configDir(); err == nil {
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// CONCORDANCE_HTTP_TIMEOUT=1m overrides http.timeout
	viper.SetEnvPrefix("CONCORDANCE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	readErr := viper.ReadInConfig()

	level := viper.GetString("logging.level")
	if viper.GetBool("output.verbose") {
		level = "debug"
	}
	logger.Setup(level, viper.GetString("logging.format"))

	if readErr == nil {
		logger.WithComponent("config").Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: could not read config %s: %v\n", cfgFile, readErr)
	}
}

// registerDefaults makes every config key known to viper so that env vars
// and config files can override any of them
func registerDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}

	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}

	var walk func(prefix string, node map[string]interface{})
	walk = func(prefix string, node map[string]interface{}) {
		for k, v := range node {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if child, ok := v.(map[string]interface{}); ok {
				walk(key, child)
				continue
			}
			viper.SetDefault(key, v)
		}
	}
	walk("", tree)

	// Empty-by-default keys are dropped by omitempty; register them explicitly
	for _, key := range []string{"http.http_proxy", "http.https_proxy", "http.no_proxy"} {
		viper.SetDefault(key, "")
	}

	return nil
}

// loadConfig returns the effective configuration: defaults overlaid with the
// config file and environment
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// configDir returns ~/.concordance
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".concordance"), nil
}
