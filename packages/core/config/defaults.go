package config

// Supported drivers.
const (
	DriverRod    = "rod"
	DriverStatic = "static"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Driver:      DriverRod,
		Timeout:     30000, // 30 seconds
		Concurrency: 5,
		Reporters:   []string{"console"},
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Screenshots == defaults.Screenshots &&
		c.Driver == defaults.Driver &&
		c.Timeout == defaults.Timeout &&
		c.Concurrency == defaults.Concurrency &&
		c.Rate == defaults.Rate &&
		c.Parallel == nil &&
		c.Bail == nil &&
		c.Verbose == nil &&
		c.NoColor == nil &&
		len(c.Reporters) == 1 && c.Reporters[0] == defaults.Reporters[0] &&
		c.History == defaults.History &&
		c.Browser == nil &&
		len(c.Variables) == 0 &&
		c.EnvFile == defaults.EnvFile
}
