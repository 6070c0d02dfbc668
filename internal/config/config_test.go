package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "partials", cfg.Server.PartialsDir)
	assert.Equal(t, "Kattali Textile Ltd.", cfg.Site.Name)
	assert.Equal(t, "home", cfg.Site.DefaultPage)
	assert.Equal(t, 400*time.Millisecond, cfg.Transition.Duration)
	assert.True(t, cfg.Prefetch.Enabled)
	assert.Contains(t, cfg.Prefetch.CriticalPages, "about")
	assert.False(t, cfg.Analytics.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("server.port", 9000)
	viper.Set("site.title_template", "%s - KTL")
	viper.Set("prefetch.enabled", false)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "About Us - KTL", cfg.PageTitle("About Us"))
	assert.False(t, cfg.Prefetch.Enabled)
}

func TestLoadBindsMultiWordKeysFromFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	path := filepath.Join(t.TempDir(), ".sitekit.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9999
  static_root: webroot
  partials_dir: webroot/partials
  allowed_origins:
    - https://kattalitextile.com
site:
  title_template: "%s :: KTL"
  default_page: about
transition:
  reduced_motion: true
prefetch:
  warmup_delay: 7s
  critical_pages:
    - news
`), 0o644))

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "webroot", cfg.Server.StaticRoot)
	assert.Equal(t, "webroot/partials", cfg.Server.PartialsDir)
	assert.Equal(t, []string{"https://kattalitextile.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "%s :: KTL", cfg.Site.TitleTemplate)
	assert.Equal(t, "about", cfg.Site.DefaultPage)
	assert.Equal(t, time.Duration(0), cfg.Transition.Duration) // reduced motion
	assert.Equal(t, 7*time.Second, cfg.Prefetch.WarmupDelay)
	assert.Equal(t, []string{"news"}, cfg.Prefetch.CriticalPages)
}

func TestPageTitle(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "About Us | Kattali Textile Ltd.", cfg.PageTitle("About Us"))
}

func TestPageTitleBrokenTemplateFallsBack(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Site.TitleTemplate = "no verb here"

	assert.Equal(t, "Home | Kattali Textile Ltd.", cfg.PageTitle("Home"))
}

func TestReducedMotionDisablesTimedPhases(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("transition.reduced_motion", true)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), cfg.Transition.Duration)
	assert.Equal(t, time.Duration(0), cfg.Transition.Stagger)
}

func TestFeatureFlags(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("features.confetti", true)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Feature("confetti"))
	assert.False(t, cfg.Feature("unknown"))
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "negative port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "not in valid range",
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "not in valid range",
		},
		{
			name:    "host injection",
			mutate:  func(c *Config) { c.Server.Host = "localhost;rm" },
			wantErr: "dangerous character",
		},
		{
			name:    "partials traversal",
			mutate:  func(c *Config) { c.Server.PartialsDir = "../../etc" },
			wantErr: "traversal",
		},
		{
			name:    "analytics without endpoint",
			mutate:  func(c *Config) { c.Analytics.Enabled = true },
			wantErr: "endpoint required",
		},
		{
			name:    "negative transition duration",
			mutate:  func(c *Config) { c.Transition.Duration = -time.Second },
			wantErr: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := validateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.NoError(t, validateConfig(cfg))
}
