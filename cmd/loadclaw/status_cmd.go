package main

import (
	"fmt"
	"os"

	"github.com/loadclaw/loadclaw/pkg/config"
	"github.com/loadclaw/loadclaw/pkg/providers"
	"github.com/loadclaw/loadclaw/pkg/state"
)

func statusCmd() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	configPath := config.GetConfigPath()

	fmt.Printf("%s %s Status\n\n", logo, displayName)

	if _, err := os.Stat(configPath); err == nil {
		fmt.Println("Config:", configPath, "✓")
	} else {
		fmt.Println("Config:", configPath, "✗")
	}

	workspace := cfg.WorkspacePath()
	if _, err := os.Stat(workspace); err == nil {
		fmt.Println("Workspace:", workspace, "✓")
	} else {
		fmt.Println("Workspace:", workspace, "✗")
	}

	model := cfg.Interpreter.Model
	if model == "" {
		model = "(provider default)"
	}
	fmt.Printf("Model: %s\n", model)
	fmt.Printf("Provider: %s\n", providers.ResolveProvider(cfg.Interpreter.Model, cfg))

	keyStatus := func(set bool) string {
		if set {
			return "✓"
		}
		return "not set"
	}
	fmt.Println("Anthropic API:", keyStatus(cfg.Providers.Anthropic.APIKey != ""))
	fmt.Println("OpenAI API:", keyStatus(cfg.Providers.OpenAI.APIKey != ""))

	fmt.Printf("Recovery: max %d attempts (retry=%v fallback=%v enhance=%v)\n",
		cfg.Recovery.MaxAttempts,
		cfg.Recovery.EnableRetry,
		cfg.Recovery.EnableFallback,
		cfg.Recovery.EnableEnhancePrompt)

	snap := state.NewManager(workspace).Snapshot()
	if snap.LastSpecID == "" {
		fmt.Println("Last spec: none")
		return
	}
	fmt.Printf("Last spec: %s (%s, confidence %.2f, %s)\n",
		snap.LastSpecID, snap.LastMethod, snap.LastConfidence,
		snap.Timestamp.Format("2006-01-02 15:04:05"))
}
