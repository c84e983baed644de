package anilibria

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL   = "https://www.anilibria.tv"
	DefaultTimeout   = 30
	DefaultPerPage   = 50
	DefaultUserAgent = "Libria Client/1.0"
)

// Config describes the remote API endpoints. It is read from a YAML file:
//
//	base_url: "https://www.anilibria.tv"
//	static_url: "https://static.anilibria.tv"
//	timeout: 30
//	per_page: 50
type Config struct {
	BaseURL   string `yaml:"base_url"`
	StaticURL string `yaml:"static_url"`
	Timeout   int    `yaml:"timeout"` // seconds
	UserAgent string `yaml:"user_agent"`
	PerPage   int    `yaml:"per_page"`
}

func DefaultConfig() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

// LoadConfig reads the client configuration from path. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.StaticURL == "" {
		c.StaticURL = c.BaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PerPage == 0 {
		c.PerPage = DefaultPerPage
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.StaticURL = strings.TrimRight(c.StaticURL, "/")
}

func (c *Config) validate() error {
	urls := map[string]string{
		"base URL":   c.BaseURL,
		"static URL": c.StaticURL,
	}

	for fieldName, fieldValue := range urls {
		parsed, err := url.Parse(fieldValue)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", fieldName)
		}
	}

	nonNegativeFields := map[string]int{
		"timeout":  c.Timeout,
		"per page": c.PerPage,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	return nil
}
