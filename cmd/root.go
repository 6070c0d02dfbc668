// Package cmd provides the sitekit command-line interface.
//
// Configuration is merged from multiple sources with clear precedence:
//  1. Command-line flags (--config, --port, etc.) - highest priority
//  2. SITEKIT_CONFIG_FILE environment variable - custom config file path
//  3. Individual environment variables (SITEKIT_SERVER_PORT, etc.)
//  4. Configuration files (.sitekit.yml) - lowest priority
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kattalitextile/sitekit/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sitekit",
	Short: "Development toolkit for the Kattali Textile marketing site",
	Long: `sitekit drives the Kattali Textile marketing site: it serves the
static shell and page fragments with live reload, exposes the route table,
and verifies that every routed page has a well-formed fragment.

Quick Start:
  sitekit serve                   Start the development server
  sitekit routes                  Print the route table
  sitekit check                   Verify fragments for every route
  sitekit version                 Show version information`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .sitekit.yml, can also use SITEKIT_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SITEKIT_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sitekit")
	}

	// SITEKIT_SERVER_PORT, SITEKIT_SITE_DEFAULT_PAGE, and so on.
	viper.SetEnvPrefix("SITEKIT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults cover everything.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger() *logging.SiteLogger {
	opts := logging.DefaultOptions()
	opts.Level = logging.ParseLevel(viper.GetString("log-level"))
	return logging.NewLogger(opts)
}
