package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config represents the webspec configuration
type Config struct {
	Screenshots string         `json:"screenshots,omitempty"` // Directory for failure screenshots; empty disables them
	Driver      string         `json:"driver,omitempty"`      // "rod" or "static"
	Timeout     int            `json:"timeout,omitempty"`     // milliseconds, per check
	Concurrency int            `json:"concurrency,omitempty"` // Number of checks run at once in parallel mode
	Rate        float64        `json:"rate,omitempty"`        // Checks started per second in parallel mode; 0 is unlimited
	Parallel    *bool          `json:"parallel,omitempty"`
	Bail        *bool          `json:"bail,omitempty"`
	Verbose     *bool          `json:"verbose,omitempty"`
	NoColor     *bool          `json:"noColor,omitempty"`
	Reporters   []string       `json:"reporters,omitempty"` // Output reporters
	History     string         `json:"history,omitempty"`   // SQLite file recording results
	Browser     *BrowserConfig `json:"browser,omitempty"`

	// Variables fill {{name}} placeholders in suites.
	Variables map[string]string `json:"variables,omitempty"`
	EnvFile   string            `json:"envFile,omitempty"` // .env file with more variables
}

// BrowserConfig configures the rod driver.
type BrowserConfig struct {
	Bin            string `json:"bin,omitempty"`
	Headless       *bool  `json:"headless,omitempty"`
	DebuggerURL    string `json:"debuggerUrl,omitempty"`
	ViewportWidth  int    `json:"viewportWidth,omitempty"`
	ViewportHeight int    `json:"viewportHeight,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetParallel returns the parallel setting, defaulting to false
func (c *Config) GetParallel() bool {
	return getBool(c.Parallel, false)
}

// GetBail returns the bail setting, defaulting to false
func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetHeadless returns the browser headless setting, defaulting to true
func (c *Config) GetHeadless() bool {
	if c.Browser == nil {
		return true
	}
	return getBool(c.Browser.Headless, true)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".webspec.config.json",
	"webspec.config.json",
	".webspecrc",
	".webspecrc.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.Screenshots != "" {
		result.Screenshots = other.Screenshots
	}
	if other.Driver != "" {
		result.Driver = other.Driver
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.Concurrency > 0 {
		result.Concurrency = other.Concurrency
	}
	if other.Rate > 0 {
		result.Rate = other.Rate
	}
	if other.History != "" {
		result.History = other.History
	}
	if other.EnvFile != "" {
		result.EnvFile = other.EnvFile
	}
	if len(other.Variables) > 0 {
		vars := make(map[string]string, len(c.Variables)+len(other.Variables))
		for k, v := range c.Variables {
			vars[k] = v
		}
		for k, v := range other.Variables {
			vars[k] = v
		}
		result.Variables = vars
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Parallel != nil {
		result.Parallel = other.Parallel
	}
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}

	if other.Browser != nil {
		result.Browser = mergeBrowser(c.Browser, other.Browser)
	}

	return &result
}

func mergeBrowser(base, other *BrowserConfig) *BrowserConfig {
	if base == nil {
		b := *other
		return &b
	}

	result := *base
	if other.Bin != "" {
		result.Bin = other.Bin
	}
	if other.Headless != nil {
		result.Headless = other.Headless
	}
	if other.DebuggerURL != "" {
		result.DebuggerURL = other.DebuggerURL
	}
	if other.ViewportWidth > 0 {
		result.ViewportWidth = other.ViewportWidth
	}
	if other.ViewportHeight > 0 {
		result.ViewportHeight = other.ViewportHeight
	}
	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
