// Package config loads and validates dispatchd's YAML configuration file,
// applying DISPATCHD_-prefixed environment overrides and optional hot
// reload, following the teacher codebase's Viper-based config manager.
package config
