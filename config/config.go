// ABOUTME: Dashboard configuration loaded from a YAML file, then overlaid with NATDASH_* environment variables.
// ABOUTME: CLI flags are applied by the caller on top; ApplyDefaults and Validate finish the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envVarPrefix = "NATDASH"

// Defaults applied to unset fields.
const (
	DefaultBaseURL        = "http://localhost:80"
	DefaultRefreshPeriod  = 5
	DefaultRequestTimeout = 10 * time.Second
	DefaultSimAddr        = "127.0.0.1:80"
)

// Config holds every setting of the dashboard and the simulator.
type Config struct {
	BaseURL        string        `yaml:"base_url"        envconfig:"BASE_URL"`
	RefreshPeriod  int           `yaml:"refresh_period"  envconfig:"REFRESH_PERIOD"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	LogFile        string        `yaml:"log_file"        envconfig:"LOG_FILE"`
	SimAddr        string        `yaml:"sim_addr"        envconfig:"SIM_ADDR"`
}

// Load reads the config file at path and overlays the environment. An empty
// path means the default location, which may be absent. An explicit path
// must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	var c Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeYAML(data, &c); err != nil {
			return nil, fmt.Errorf("unmarshaling config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file; environment and defaults only
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	return &c, nil
}

// decodeYAML rejects unknown keys so typos surface as errors.
func decodeYAML(data []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.RefreshPeriod == 0 {
		c.RefreshPeriod = DefaultRefreshPeriod
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.SimAddr == "" {
		c.SimAddr = DefaultSimAddr
	}
	if c.LogFile == "" {
		if p, err := DefaultLogPath(); err == nil {
			c.LogFile = p
		}
	}
}

// Validate reports the first invalid setting, naming both the YAML key and
// the environment variable that set it.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return missing("base_url", "BASE_URL")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid configuration: base_url / %s_BASE_URL must be an http(s) origin, got %q", envVarPrefix, c.BaseURL)
	}
	if c.RefreshPeriod <= 0 {
		return fmt.Errorf("invalid configuration: refresh_period / %s_REFRESH_PERIOD must be positive, got %d", envVarPrefix, c.RefreshPeriod)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid configuration: request_timeout / %s_REQUEST_TIMEOUT must be positive, got %s", envVarPrefix, c.RequestTimeout)
	}
	return nil
}

func missing(yamlKey, envKey string) error {
	return fmt.Errorf("missing required configuration: %s / %s_%s", yamlKey, envVarPrefix, envKey)
}
