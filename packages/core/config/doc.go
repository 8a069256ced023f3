// Package config handles configuration loading and management for webspec.
//
// It provides functionality for:
//   - Loading configuration from .webspec.config.json, webspec.config.json or .webspecrc
//   - Default configuration values
//   - Merging command line overrides over file settings
package config
