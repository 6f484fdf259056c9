// Package config loads, validates, and normalizes bookbinder's TOML
// configuration.
package config
