// Package cmd implements the command-line interface of the news ingestion
// pipeline.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Debarshi-Chaudhuri/news-api/cmd/index"
	"github.com/Debarshi-Chaudhuri/news-api/cmd/schedule"
	"github.com/Debarshi-Chaudhuri/news-api/cmd/scrape"
	"github.com/Debarshi-Chaudhuri/news-api/cmd/search"
	"github.com/Debarshi-Chaudhuri/news-api/cmd/taxonomy"
	"github.com/Debarshi-Chaudhuri/news-api/internal/config"
)

// Version is set at build time.
var Version = "dev"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug logging for all commands.
	Debug bool

	rootCmd = &cobra.Command{
		Use:           "news-api",
		Short:         "Business news ingestion pipeline",
		Long:          `Searches the web for Indian business news, extracts articles and stores them deduplicated by URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	// Load .env early so environment variables are available to viper
	_ = godotenv.Load()

	// Parse flags early to pick up --config and --debug
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "news-api version %s\n", Version)
		},
	})

	rootCmd.AddCommand(
		scrape.Command(),
		schedule.Command(),
		taxonomy.Command(),
		index.Command(),
		search.Command(),
	)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	// Environment variables take precedence over the config file and defaults
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional unless named explicitly
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if err := viper.BindPFlag("app.debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}

	if err := bindEnvVars(); err != nil {
		return err
	}

	if viper.GetString("app.environment") == "development" {
		viper.Set("logger.development", true)
		viper.Set("logger.encoding", "console")
	}
	return nil
}

// bindEnvVars maps conventional environment variable names onto config keys.
func bindEnvVars() error {
	bindings := map[string][]string{
		"app.environment":                        {"APP_ENV"},
		"app.debug":                              {"APP_DEBUG"},
		"logger.level":                           {"LOG_LEVEL"},
		"logger.encoding":                        {"LOG_FORMAT"},
		"elasticsearch.addresses":                {"ELASTICSEARCH_HOSTS", "ELASTICSEARCH_ADDRESSES"},
		"elasticsearch.username":                 {"ELASTICSEARCH_USERNAME"},
		"elasticsearch.password":                 {"ELASTIC_PASSWORD", "ELASTICSEARCH_PASSWORD"},
		"elasticsearch.api_key":                  {"ELASTICSEARCH_API_KEY"},
		"elasticsearch.index_name":               {"ELASTICSEARCH_INDEX_NAME"},
		"elasticsearch.tls.insecure_skip_verify": {"ELASTICSEARCH_SKIP_TLS"},
		"redis.address":                          {"REDIS_ADDR", "REDIS_ADDRESS"},
		"redis.password":                         {"REDIS_PASSWORD"},
		"metrics.address":                        {"METRICS_ADDR"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := viper.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}
