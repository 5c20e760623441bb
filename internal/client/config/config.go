// Package config loads runtime settings for the expense tracking CLI.
package config

// Config holds runtime settings for the CLI.
//
// ServerEndpointAddr is the base URL of the backend HTTP API.
type Config struct {
	ServerEndpointAddr string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://localhost:3000"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment and command-line flags. Later sources take precedence over
// earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
