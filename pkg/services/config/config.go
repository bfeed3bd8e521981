// Package config loads runtime configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	AuthMode string `mapstructure:"AUTH_MODE"`
	// JWTSecret signs/verifies bearer tokens when AUTH_MODE is jwt.
	JWTSecret string `mapstructure:"JWT_SECRET"`

	ChromePath string `mapstructure:"CHROME_PATH"`
	ChartJSURL string `mapstructure:"CHARTJS_URL"`

	GlobalTimeout       time.Duration `mapstructure:"GLOBAL_TIMEOUT"`
	ChartLibraryTimeout time.Duration `mapstructure:"CHART_LIBRARY_TIMEOUT"`
	ChartTimeout        time.Duration `mapstructure:"CHART_TIMEOUT"`
	PollInterval        time.Duration `mapstructure:"POLL_INTERVAL"`
	// SettleDelay is the post-render reflow wait. Empirical; kept
	// configurable so it can be tuned per engine build.
	SettleDelay time.Duration `mapstructure:"SETTLE_DELAY"`
}

const (
	AuthModeJWT = "jwt"
	AuthModeDev = "dev"
)

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("AUTH_MODE", AuthModeJWT)
	v.SetDefault("GLOBAL_TIMEOUT", "60s")
	v.SetDefault("CHART_LIBRARY_TIMEOUT", "15s")
	v.SetDefault("CHART_TIMEOUT", "5s")
	v.SetDefault("POLL_INTERVAL", "100ms")
	v.SetDefault("SETTLE_DELAY", "1s")

	for _, key := range []string{
		"PORT", "AUTH_MODE", "JWT_SECRET", "CHROME_PATH", "CHARTJS_URL",
		"GLOBAL_TIMEOUT", "CHART_LIBRARY_TIMEOUT", "CHART_TIMEOUT",
		"POLL_INTERVAL", "SETTLE_DELAY",
	} {
		_ = v.BindEnv(key)
	}

	// a missing .env file is fine, the environment still applies
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// ValidateAuth checks the auth settings. Only the server calls it;
// the CLI performs no authentication and must load without a secret.
func (c *Config) ValidateAuth() error {
	if c.AuthMode != AuthModeJWT && c.AuthMode != AuthModeDev {
		return fmt.Errorf("unsupported AUTH_MODE %q", c.AuthMode)
	}
	if c.AuthMode == AuthModeJWT && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
	}
	return nil
}
