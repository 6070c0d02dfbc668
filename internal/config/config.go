// Package config provides configuration management for sitekit using Viper
// for flexible loading from files, environment variables, and command-line
// flags.
//
// Configuration is read from .sitekit.yml with SITEKIT_ environment variable
// overrides. It covers the dev server, site identity (title template, base
// URL), transition timing, prefetch behavior, analytics, and feature flags.
// A Config is read-only after Load returns.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Site       SiteConfig       `yaml:"site" mapstructure:"site"`
	Transition TransitionConfig `yaml:"transition" mapstructure:"transition"`
	Prefetch   PrefetchConfig   `yaml:"prefetch" mapstructure:"prefetch"`
	Analytics  AnalyticsConfig  `yaml:"analytics" mapstructure:"analytics"`
	Features   map[string]bool  `yaml:"features" mapstructure:"features"`
}

type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	Host           string   `yaml:"host" mapstructure:"host"`
	StaticRoot     string   `yaml:"static_root" mapstructure:"static_root"`
	PartialsDir    string   `yaml:"partials_dir" mapstructure:"partials_dir"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	Environment    string   `yaml:"environment" mapstructure:"environment"`
}

type SiteConfig struct {
	Name          string `yaml:"name" mapstructure:"name"`
	TitleTemplate string `yaml:"title_template" mapstructure:"title_template"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	DefaultPage   string `yaml:"default_page" mapstructure:"default_page"`
}

type TransitionConfig struct {
	Duration      time.Duration `yaml:"duration" mapstructure:"duration"`
	Stagger       time.Duration `yaml:"stagger" mapstructure:"stagger"`
	ReducedMotion bool          `yaml:"reduced_motion" mapstructure:"reduced_motion"`
}

type PrefetchConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	WarmupDelay   time.Duration `yaml:"warmup_delay" mapstructure:"warmup_delay"`
	CriticalPages []string      `yaml:"critical_pages" mapstructure:"critical_pages"`
}

type AnalyticsConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Load builds a Config from viper's merged sources and applies defaults and
// validation.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 && !viper.IsSet("server.port") {
		config.Server.Port = 8090
	}
	if config.Server.StaticRoot == "" {
		config.Server.StaticRoot = "."
	}
	if config.Server.PartialsDir == "" {
		config.Server.PartialsDir = "partials"
	}
	if config.Server.Environment == "" {
		config.Server.Environment = "development"
	}

	if config.Site.Name == "" {
		config.Site.Name = "Kattali Textile Ltd."
	}
	if config.Site.TitleTemplate == "" {
		config.Site.TitleTemplate = "%s | " + config.Site.Name
	}
	if config.Site.DefaultPage == "" {
		config.Site.DefaultPage = "home"
	}

	if config.Transition.Duration == 0 {
		config.Transition.Duration = 400 * time.Millisecond
	}
	if config.Transition.Stagger == 0 {
		config.Transition.Stagger = 80 * time.Millisecond
	}
	// Reduced motion disables the timed phases; the swap, animation
	// triggers, and focus handling still run.
	if config.Transition.ReducedMotion {
		config.Transition.Duration = 0
		config.Transition.Stagger = 0
	}

	if !viper.IsSet("prefetch.enabled") {
		config.Prefetch.Enabled = true
	}
	if config.Prefetch.WarmupDelay == 0 {
		config.Prefetch.WarmupDelay = 2 * time.Second
	}
	if len(config.Prefetch.CriticalPages) == 0 {
		config.Prefetch.CriticalPages = []string{"about", "products", "contact"}
	}

	if config.Analytics.Timeout == 0 {
		config.Analytics.Timeout = 5 * time.Second
	}

	if config.Features == nil {
		config.Features = make(map[string]bool)
	}
}

// Feature reports whether a named feature flag is enabled.
func (c *Config) Feature(name string) bool {
	return c.Features[name]
}

// PageTitle renders the document title for a page using the configured
// template.
func (c *Config) PageTitle(routeTitle string) string {
	return fmt.Sprintf(c.TitleTemplateOrDefault(), routeTitle)
}

// TitleTemplateOrDefault returns the title template, guarding against a
// template with no verb.
func (c *Config) TitleTemplateOrDefault() string {
	if strings.Contains(c.Site.TitleTemplate, "%s") {
		return c.Site.TitleTemplate
	}

	return "%s | " + c.Site.Name
}

// validateConfig validates configuration values for security and correctness.
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if config.Transition.Duration < 0 {
		return fmt.Errorf("transition config: duration must not be negative")
	}
	if config.Prefetch.WarmupDelay < 0 {
		return fmt.Errorf("prefetch config: warmup_delay must not be negative")
	}

	if config.Analytics.Enabled && config.Analytics.Endpoint == "" {
		return fmt.Errorf("analytics config: endpoint required when analytics is enabled")
	}

	return nil
}

func validateServerConfig(config *ServerConfig) error {
	// Port 0 is allowed so tests can bind system-assigned ports.
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		if err := rejectDangerous(config.Host); err != nil {
			return fmt.Errorf("host: %w", err)
		}
	}

	if err := validatePath(config.StaticRoot); err != nil {
		return fmt.Errorf("invalid static_root '%s': %w", config.StaticRoot, err)
	}
	if err := validatePath(config.PartialsDir); err != nil {
		return fmt.Errorf("invalid partials_dir '%s': %w", config.PartialsDir, err)
	}

	return nil
}

// validatePath validates a file path for security.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	return rejectDangerous(cleanPath)
}

func rejectDangerous(value string) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(value, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	return nil
}
