// Package config provides configuration for the builder service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Settings database (credential persistence only)
	DatabasePath string

	// Completion service
	ServiceBaseURL string
	Model          string
	RequestTimeout time.Duration

	// Temperatures per call site: low for structured extraction,
	// mid for build-file generation, high for open conversation.
	ExtractTemperature float64
	BuildTemperature   float64
	ChatTemperature    float64

	// Co-pilot persona instruction
	Persona string
}

// DefaultPersona is the fixed instruction the conversation engine
// sends ahead of the transcript.
const DefaultPersona = "You are Astrid, the Arch1tech co-pilot. You help users turn rough ideas into AI agents, workflows, and custom models. Be concrete, concise, and encouraging. When the user describes an idea, suggest which pipeline fits it."

// Load loads configuration from environment variables, then applies
// the optional YAML overlay file named by ARCH1TECH_CONFIG.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:           getEnvInt("HTTP_PORT", 8080),
		DatabasePath:       getEnv("DATABASE_PATH", "file:arch1tech.db?cache=shared&mode=rwc"),
		ServiceBaseURL:     getEnv("LLM_BASE_URL", "https://api.openai.com"),
		Model:              getEnv("LLM_MODEL", "gpt-4o-mini"),
		RequestTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_MS", 120000)) * time.Millisecond,
		ExtractTemperature: getEnvFloat("LLM_EXTRACT_TEMPERATURE", 0.2),
		BuildTemperature:   getEnvFloat("LLM_BUILD_TEMPERATURE", 0.7),
		ChatTemperature:    getEnvFloat("LLM_CHAT_TEMPERATURE", 0.9),
		Persona:            getEnv("ASTRID_PERSONA", DefaultPersona),
	}

	if path := os.Getenv("ARCH1TECH_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// fileConfig is the YAML overlay shape. Only set fields override.
type fileConfig struct {
	HTTPPort           *int     `yaml:"http_port"`
	DatabasePath       *string  `yaml:"database_path"`
	ServiceBaseURL     *string  `yaml:"service_base_url"`
	Model              *string  `yaml:"model"`
	RequestTimeoutMs   *int     `yaml:"request_timeout_ms"`
	ExtractTemperature *float64 `yaml:"extract_temperature"`
	BuildTemperature   *float64 `yaml:"build_temperature"`
	ChatTemperature    *float64 `yaml:"chat_temperature"`
	Persona            *string  `yaml:"persona"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.HTTPPort != nil {
		c.HTTPPort = *fc.HTTPPort
	}
	if fc.DatabasePath != nil {
		c.DatabasePath = *fc.DatabasePath
	}
	if fc.ServiceBaseURL != nil {
		c.ServiceBaseURL = *fc.ServiceBaseURL
	}
	if fc.Model != nil {
		c.Model = *fc.Model
	}
	if fc.RequestTimeoutMs != nil {
		c.RequestTimeout = time.Duration(*fc.RequestTimeoutMs) * time.Millisecond
	}
	if fc.ExtractTemperature != nil {
		c.ExtractTemperature = *fc.ExtractTemperature
	}
	if fc.BuildTemperature != nil {
		c.BuildTemperature = *fc.BuildTemperature
	}
	if fc.ChatTemperature != nil {
		c.ChatTemperature = *fc.ChatTemperature
	}
	if fc.Persona != nil {
		c.Persona = *fc.Persona
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}
