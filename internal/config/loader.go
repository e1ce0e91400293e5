package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".wikicorpus"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the .wikicorpus configuration file. Absent keys
// leave the defaults untouched.
type File struct {
	Language       string         `yaml:"language,omitempty"`
	APIURL         string         `yaml:"apiURL,omitempty"`
	BatchSize      int            `yaml:"batchSize,omitempty"`
	PacingInterval *time.Duration `yaml:"pacingInterval,omitempty"`
	MaxInFlight    int            `yaml:"maxInFlight,omitempty"`
	Timeout        time.Duration  `yaml:"timeout,omitempty"`
	UserAgent      string         `yaml:"userAgent,omitempty"`
	Token          string         `yaml:"token,omitempty"`
	Proxy          string         `yaml:"proxy,omitempty"`
	StoreDir       string         `yaml:"storeDir,omitempty"`
	Retry          RetryFile      `yaml:"retry,omitempty"`
}

// RetryFile is the retry section of the configuration file.
type RetryFile struct {
	InitialInterval time.Duration `yaml:"initialInterval,omitempty"`
	MaxInterval     time.Duration `yaml:"maxInterval,omitempty"`
	MaxAttempts     uint64        `yaml:"maxAttempts,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// Apply overrides the fields of c that are set in the file.
func (c *Config) Apply(cf *File) {
	if cf == nil {
		return
	}
	if cf.Language != "" {
		c.Language = cf.Language
	}
	if cf.APIURL != "" {
		c.APIURL = cf.APIURL
	}
	if cf.BatchSize != 0 {
		c.BatchSize = cf.BatchSize
	}
	if cf.PacingInterval != nil {
		c.PacingInterval = *cf.PacingInterval
	}
	if cf.MaxInFlight != 0 {
		c.MaxInFlight = cf.MaxInFlight
	}
	if cf.Timeout != 0 {
		c.Timeout = cf.Timeout
	}
	if cf.UserAgent != "" {
		c.UserAgent = cf.UserAgent
	}
	if cf.Token != "" {
		c.Token = cf.Token
	}
	if cf.Proxy != "" {
		c.ProxyAddress = cf.Proxy
	}
	if cf.StoreDir != "" {
		c.StoreDir = cf.StoreDir
	}
	if cf.Retry.InitialInterval != 0 {
		c.RetryInitialInterval = cf.Retry.InitialInterval
	}
	if cf.Retry.MaxInterval != 0 {
		c.RetryMaxInterval = cf.Retry.MaxInterval
	}
	if cf.Retry.MaxAttempts != 0 {
		c.RetryMaxAttempts = cf.Retry.MaxAttempts
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .wikicorpus in the current directory
// 3. Look for .wikicorpus in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
