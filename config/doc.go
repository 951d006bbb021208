// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// The package covers:
//   - storage location for downloaded schedule archives
//   - logging level
//   - real-time credentials per agency
//   - download retry policy and scheduled refresh
//   - extra agencies registered on top of the built-in table
package config
