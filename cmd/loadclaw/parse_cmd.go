package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loadclaw/loadclaw/pkg/interpreter"
	"github.com/loadclaw/loadclaw/pkg/logger"
	"github.com/loadclaw/loadclaw/pkg/parser"
)

// cmdOptions are the flags shared by parse and generate.
type cmdOptions struct {
	text    string
	file    string
	format  string
	session string
	model   string
	debug   bool
}

func parseOptions(args []string) (cmdOptions, error) {
	opts := cmdOptions{format: "json"}
	var trailing []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--debug", "-d":
			opts.debug = true
		case "-m", "--message":
			if i+1 < len(args) {
				opts.text = args[i+1]
				i++
			}
		case "-f", "--file":
			if i+1 < len(args) {
				opts.file = args[i+1]
				i++
			}
		case "-o", "--output":
			if i+1 < len(args) {
				opts.format = strings.ToLower(args[i+1])
				i++
			}
		case "-s", "--session":
			if i+1 < len(args) {
				opts.session = args[i+1]
				i++
			}
		case "--model":
			if i+1 < len(args) {
				opts.model = args[i+1]
				i++
			}
		default:
			trailing = append(trailing, args[i])
		}
	}

	if opts.text == "" {
		opts.text = strings.Join(trailing, " ")
	}
	if opts.format != "json" && opts.format != "yaml" {
		return opts, fmt.Errorf("unsupported output format %q (want json or yaml)", opts.format)
	}
	return opts, nil
}

// resolveText returns the description, preferring -m/trailing args over -f.
func resolveText(opts cmdOptions) (string, error) {
	if opts.text != "" {
		return opts.text, nil
	}
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", opts.file, err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("no description given (use -m, -f, or trailing arguments)")
}

// renderResult emits the full result envelope in either format, so yaml
// output carries confidence, method, and warnings just like json.
func renderResult(res interpreter.Result, format string) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(res)
	}
	return json.MarshalIndent(res, "", "  ")
}

// parseCmd runs the deterministic extraction cascade only. Useful offline and
// as the ground truth the AI path falls back to.
func parseCmd() {
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

	pr := parser.Parse(text)
	res := interpreter.Result{
		Spec:       pr.Spec,
		Confidence: pr.Confidence,
		Method:     pr.Method,
		Warnings:   pr.Warnings,
	}

	emitResult(res, opts.format)
	recordOutcome(res)
}

func emitResult(res interpreter.Result, format string) {
	out, err := renderResult(res, format)
	if err != nil {
		fmt.Printf("Error rendering spec: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}
