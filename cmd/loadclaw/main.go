// LoadClaw - natural-language load-test spec generator
// License: MIT
//
// Copyright (c) 2026 LoadClaw contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/loadclaw/loadclaw/pkg/config"
)

var (
	version   = "dev"
	buildTime string
	goVersion string
)

const logo = "⚡"
const displayName = "LoadClaw"
const cliName = "loadclaw"

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "onboard":
		onboard()
	case "parse":
		parseCmd()
	case "generate":
		generateCmd()
	case "repl":
		replCmd()
	case "status":
		statusCmd()
	case "version", "--version", "-v":
		printVersion()
	case "help", "--help", "-h":
		printHelp()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printHelp()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("%s %s v%s\n", logo, displayName, version)
	if buildTime != "" {
		fmt.Printf("  Build: %s\n", buildTime)
	}
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	fmt.Printf("  Go: %s\n", goVer)
}

func printHelp() {
	fmt.Printf("%s %s - turn plain English into load-test specs v%s\n\n", logo, displayName, version)
	fmt.Printf("Usage: %s <command>\n", cliName)
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  onboard     Initialize LoadClaw configuration and workspace")
	fmt.Println("  parse       Extract a spec heuristically (no AI, deterministic)")
	fmt.Println("  generate    Generate a spec via the AI interpreter with recovery")
	fmt.Println("  repl        Interactive mode: describe tests, get specs back")
	fmt.Println("  status      Show LoadClaw status and the last generated spec")
	fmt.Println("  version     Show version information")
	fmt.Println()
	fmt.Println("Parse/generate flags:")
	fmt.Println("  -m <text>         The description (or pass it as trailing args)")
	fmt.Println("  -f <file>         Read the description from a file")
	fmt.Println("  -o <json|yaml>    Output format (default json)")
	fmt.Println("  -s <session>      Session key for the recovery retry ceiling")
	fmt.Println("  --model <model>   Override the interpreter model")
	fmt.Println("  --debug           Verbose logging")
}

func onboard() {
	configPath := config.GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		fmt.Printf("Error creating config dir: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(configPath); err == nil {
		// Never overwrite an existing config, it may contain credentials.
		fmt.Printf("Config already exists at %s (preserving credentials)\n", configPath)
		return
	}

	cfg := config.DefaultConfig()
	if err := config.SaveConfig(configPath, cfg); err != nil {
		fmt.Printf("Error saving config: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.WorkspacePath(), 0755); err != nil {
		fmt.Printf("Error creating workspace: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s Config written to %s\n", logo, configPath)
	fmt.Printf("Workspace: %s\n", cfg.WorkspacePath())
	fmt.Printf("Set an API key (e.g. LOADCLAW_PROVIDERS_ANTHROPIC_API_KEY) to enable AI interpretation.\n")
	fmt.Printf("Without one, `%s parse` and `%s generate` still work heuristically.\n", cliName, cliName)
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(config.GetConfigPath())
}
