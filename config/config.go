// Package config loads engine-wide tunables for the header-parsing core
// from a JSON file, layered over built-in defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// EngineConfig controls ProcessHeaders behavior.
type EngineConfig struct {
	// MaxHeaderBytes bounds how much of a message is scanned for headers
	// before giving up. Zero means unbounded.
	MaxHeaderBytes int `json:"max_header_bytes"`

	// CountNewlines enables the newline-majority counting pass.
	CountNewlines bool `json:"count_newlines"`

	// DefaultCharset is handed to the charset package when an
	// encoded-word's charset token is empty.
	DefaultCharset string `json:"default_charset"`

	// UnknownCharsetIsFatal, when true, logs an unrecognized charset at
	// warn level instead of debug. The token still degrades to a
	// replacement character either way. Default false.
	UnknownCharsetIsFatal bool `json:"unknown_charset_is_fatal"`
}

// DefaultConfig returns the engine's default tunables.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		MaxHeaderBytes: 1 + (64 << 10), // headers can legitimately run long with many Received: hops
		CountNewlines:  true,
		DefaultCharset: "utf-8",
	}
}

// ReadConfig loads an EngineConfig from a JSON file at path, layered over
// DefaultConfig so an omitted field keeps its default.
func ReadConfig(path string) (*EngineConfig, error) {
	cfg := DefaultConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %s", err)
	}
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %s", err)
	}
	return cfg, nil
}
