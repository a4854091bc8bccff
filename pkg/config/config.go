package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// ProviderConfig holds credentials for one AI interpreter backend.
type ProviderConfig struct {
	APIKey  string `json:"api_key,omitempty" env:"API_KEY"`
	APIBase string `json:"api_base,omitempty" env:"API_BASE"`
}

type ProvidersConfig struct {
	Anthropic ProviderConfig `json:"anthropic" envPrefix:"ANTHROPIC_"`
	OpenAI    ProviderConfig `json:"openai" envPrefix:"OPENAI_"`
}

// InterpreterConfig tunes the AI-assisted interpretation path.
type InterpreterConfig struct {
	Model     string `json:"model,omitempty" env:"MODEL"`
	MaxTokens int    `json:"max_tokens,omitempty" env:"MAX_TOKENS"`
	// SignalThreshold gates whether raw text is worth sending to the
	// interpreter at all (see the score package).
	SignalThreshold float64 `json:"signal_threshold" env:"SIGNAL_THRESHOLD"`
}

// RecoveryConfig tunes the recovery engine.
type RecoveryConfig struct {
	MaxAttempts         int  `json:"max_attempts,omitempty" env:"MAX_ATTEMPTS"`
	EnableRetry         bool `json:"enable_retry" env:"ENABLE_RETRY"`
	EnableFallback      bool `json:"enable_fallback" env:"ENABLE_FALLBACK"`
	EnableEnhancePrompt bool `json:"enable_enhance_prompt" env:"ENABLE_ENHANCE_PROMPT"`
}

type AuditConfig struct {
	Enabled bool   `json:"enabled" env:"ENABLED"`
	Path    string `json:"path,omitempty" env:"PATH"`
}

type Config struct {
	Workspace   string            `json:"workspace,omitempty" env:"WORKSPACE"`
	Providers   ProvidersConfig   `json:"providers" envPrefix:"PROVIDERS_"`
	Interpreter InterpreterConfig `json:"interpreter" envPrefix:"INTERPRETER_"`
	Recovery    RecoveryConfig    `json:"recovery" envPrefix:"RECOVERY_"`
	Audit       AuditConfig       `json:"audit" envPrefix:"AUDIT_"`
}

// WorkspacePath returns the configured workspace, defaulting to ~/.loadclaw.
func (c *Config) WorkspacePath() string {
	if c.Workspace != "" {
		return c.Workspace
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".loadclaw")
}

func DefaultConfig() *Config {
	return &Config{
		Interpreter: InterpreterConfig{
			MaxTokens:       4096,
			SignalThreshold: 0.1,
		},
		Recovery: RecoveryConfig{
			MaxAttempts:         3,
			EnableRetry:         true,
			EnableFallback:      true,
			EnableEnhancePrompt: true,
		},
		Audit: AuditConfig{
			Enabled: true,
		},
	}
}

// GetConfigPath returns the standard config file path.
func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".loadclaw", "config.json")
}

// LoadConfig reads the config file over the defaults, then applies
// LOADCLAW_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "LOADCLAW_"}); err != nil {
		return fmt.Errorf("applying environment overrides: %w", err)
	}
	return nil
}

// SaveConfig persists the config as indented JSON.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
