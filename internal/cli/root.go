package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/mentions/internal/logging"
	"github.com/ppiankov/mentions/internal/model"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// envKeyReplacer maps endpoint.url to MENTIONS_ENDPOINT_URL
var envKeyReplacer = strings.NewReplacer(".", "_")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mentions",
	Short: "Mentions - sentences in which members of parliament mention each other",
	Long: `Mentions extracts, from plenary speeches of the Finnish Parliament, the
sentences in which a speaker refers to another member.

Each sentence is reduced to a lemmatized bag of words and written to
mention_sentences_<start>_<end>.csv; the party, party colour and name of
every speaker and referenced member go to people_<start>_<end>.csv.

Speeches and people are read from the Semantic Parliament SPARQL endpoint.`,
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
	Long:  `Display the version number of mentions.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("mentions " + Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.mentions/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	setDefaults(model.DefaultConfig())

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.mentions")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match MENTIONS_*, e.g. MENTIONS_ENDPOINT_URL
	viper.SetEnvPrefix("MENTIONS")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every configuration key so that environment
// variables and config files can override it
func setDefaults(cfg *model.Config) {
	defaults := map[string]any{
		"endpoint.url":                      cfg.Endpoint.URL,
		"endpoint.timeout":                  cfg.Endpoint.Timeout,
		"endpoint.user_agent":               cfg.Endpoint.UserAgent,
		"endpoint.max_body_bytes":           cfg.Endpoint.MaxBodyBytes,
		"endpoint.retries":                  cfg.Endpoint.Retries,
		"endpoint.http_proxy":               cfg.Endpoint.HTTPProxy,
		"endpoint.https_proxy":              cfg.Endpoint.HTTPSProxy,
		"endpoint.no_proxy":                 cfg.Endpoint.NoProxy,
		"endpoint.respect_robots":           cfg.Endpoint.RespectRobots,
		"period.start":                      cfg.Period.Start,
		"period.end":                        cfg.Period.End,
		"period.term":                       cfg.Period.Term,
		"lemmatizer.kind":                   cfg.Lemmatizer.Kind,
		"lemmatizer.lexicon_path":           cfg.Lemmatizer.LexiconPath,
		"lemmatizer.remote_url":             cfg.Lemmatizer.RemoteURL,
		"lemmatizer.cache_ttl":              cfg.Lemmatizer.CacheTTL,
		"stopwords.path":                    cfg.Stopwords.Path,
		"cache.enabled":                     cfg.Cache.Enabled,
		"cache.dir":                         cfg.Cache.Dir,
		"cache.memory_ttl":                  cfg.Cache.MemoryTTL,
		"cache.disk_ttl":                    cfg.Cache.DiskTTL,
		"rate_limiting.requests_per_second": cfg.RateLimiting.RequestsPerSecond,
		"rate_limiting.burst_size":          cfg.RateLimiting.BurstSize,
		"breaker.max_failures":              cfg.Breaker.MaxFailures,
		"breaker.timeout":                   cfg.Breaker.Timeout,
		"concurrency.workers":               cfg.Concurrency.Workers,
		"output.dir":                        cfg.Output.Dir,
		"output.verbose":                    cfg.Output.Verbose,
		"log.level":                         cfg.Log.Level,
		"log.format":                        cfg.Log.Format,
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *model.Config) (zerolog.Logger, error) {
	return logging.New(cfg.Log, os.Stderr)
}
