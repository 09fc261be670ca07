// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the specmend YAML configuration: defaults
// first, then the file overlay, then struct validation.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MaxConfigFileSize caps the config file at 1 MiB.
const MaxConfigFileSize = 1 << 20

// Config is the full specmend configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Repair  RepairConfig  `yaml:"repair"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP API service.
type ServerConfig struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"gte=1,lte=65535"`
}

// LLMConfig selects and configures the model backend.
type LLMConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `yaml:"provider" validate:"oneof=ollama openai"`

	// RateLimit is the maximum oracle calls per second.
	RateLimit float64 `yaml:"rate_limit" validate:"gt=0"`
}

// RepairConfig tunes the repair loop.
type RepairConfig struct {
	MaxIterations int `yaml:"max_iterations" validate:"gte=1,lte=50"`
}

// LoggingConfig configures the slog setup.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8090},
		LLM:     LLMConfig{Provider: "ollama", RateLimit: 2},
		Repair:  RepairConfig{MaxIterations: 5},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a config file over the defaults. An empty path returns
// the defaults unchanged.
//
// Inputs:
//   - path: YAML file path; size capped, traversal rejected.
//
// Outputs:
//   - Config: The merged, validated configuration.
//   - error: Non-nil on read, parse or validation failure.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if err := Validate(cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := readCapped(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}

	slog.Info("Configuration loaded", "path", path,
		"provider", cfg.LLM.Provider, "max_iterations", cfg.Repair.MaxIterations)
	return cfg, nil
}

// Validate checks the struct constraints.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

// readCapped reads a file with path and size checks.
func readCapped(path string) ([]byte, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if strings.Contains(absPath, "..") {
		return nil, fmt.Errorf("readCapped: path traversal not allowed: %s", absPath)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > MaxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), MaxConfigFileSize)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return data, nil
}
