package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/loadclaw/loadclaw/pkg/audit"
	"github.com/loadclaw/loadclaw/pkg/config"
	"github.com/loadclaw/loadclaw/pkg/interpreter"
	"github.com/loadclaw/loadclaw/pkg/logger"
	"github.com/loadclaw/loadclaw/pkg/providers"
	"github.com/loadclaw/loadclaw/pkg/spec"
	"github.com/loadclaw/loadclaw/pkg/state"
)

// buildInterpreter wires config, provider, and audit sink into a ready
// interpreter. The provider may be nil; generation then runs offline.
func buildInterpreter(opts cmdOptions) (*interpreter.Interpreter, *config.Config) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if opts.model != "" {
		cfg.Interpreter.Model = opts.model
	}

	var sink audit.Sink = audit.NopSink{}
	if cfg.Audit.Enabled {
		path := cfg.Audit.Path
		if path == "" {
			path = filepath.Join(cfg.WorkspacePath(), "audit", "events.jsonl")
		}
		if js, err := audit.NewJSONLSinkAt(path); err == nil {
			sink = js
		} else {
			logger.WarnCF("cli", "Audit sink unavailable", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
	}

	provider := providers.NewFromConfig(cfg)
	if provider == nil {
		fmt.Fprintf(os.Stderr, "No AI provider configured; using heuristic extraction only.\n")
	}

	return interpreter.New(cfg, provider, sink), cfg
}

func generateCmd() {
	opts, err := parseOptions(os.Args[2:])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}
	if opts.debug {
		logger.SetLevel(logger.DEBUG)
	}

	text, err := resolveText(opts)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	interp, cfg := buildInterpreter(opts)

	ctx := context.Background()
	var res interpreter.Result
	if opts.session != "" {
		res = interp.GenerateSession(ctx, opts.session, text)
	} else {
		res = interp.Generate(ctx, text)
	}

	emitResult(res, opts.format)
	recordOutcomeIn(cfg, res)
}

func replCmd() {
	opts, err := parseOptions(os.Args[2:])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}
	if opts.debug {
		logger.SetLevel(logger.DEBUG)
	}

	interp, cfg := buildInterpreter(opts)
	session := opts.session
	if session == "" {
		session = "repl:" + spec.NewID()
	}

	fmt.Printf("%s Describe a load test, get a spec back (Ctrl+C to exit)\n\n", logo)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          fmt.Sprintf("%s > ", logo),
		HistoryFile:     filepath.Join(os.TempDir(), ".loadclaw_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	ctx := context.Background()
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Goodbye!")
			return
		}

		res := interp.GenerateSession(ctx, session, input)
		emitResult(res, opts.format)
		recordOutcomeIn(cfg, res)
		fmt.Println()
	}
}

// recordOutcome persists the last result under the default workspace.
func recordOutcome(res interpreter.Result) {
	cfg, err := loadConfig()
	if err != nil {
		return
	}
	recordOutcomeIn(cfg, res)
}

func recordOutcomeIn(cfg *config.Config, res interpreter.Result) {
	if res.Spec == nil {
		return
	}
	mgr := state.NewManager(cfg.WorkspacePath())
	if err := mgr.RecordOutcome(res.Spec.ID, res.Method, res.Confidence); err != nil {
		logger.DebugCF("cli", "State save failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
