// Command jsbinder renders a template against a state document from the
// command line: it mounts the template, merges the state, optionally
// applies a YAML binding manifest, flushes and prints the resulting HTML.
//
// Usage:
//
//	jsbinder -template page.html -state state.json [-manifest bindings.yaml]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/anders-frisk/JSBinder/pkg/binder"
	"github.com/anders-frisk/JSBinder/pkg/ext"
	"github.com/anders-frisk/JSBinder/pkg/functions"
)

func main() {
	templatePath := flag.String("template", "", "template HTML file (required)")
	statePath := flag.String("state", "", "state JSON file")
	manifestPath := flag.String("manifest", "", "YAML binding manifest")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *templatePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*templatePath, *statePath, *manifestPath, logger); err != nil {
		fmt.Fprintln(os.Stderr, "jsbinder:", err)
		os.Exit(1)
	}
}

func run(templatePath, statePath, manifestPath string, logger *slog.Logger) error {
	template, err := os.ReadFile(templatePath)
	if err != nil {
		return err
	}

	reg := functions.NewRegistry()
	if err := ext.RegisterAll(reg); err != nil {
		return err
	}

	b := binder.New(
		binder.WithLogger(logger),
		binder.WithFunctions(reg),
	)

	root, err := b.MountHTML(string(template))
	if err != nil {
		return fmt.Errorf("mounting template: %w", err)
	}

	if manifestPath != "" {
		f, err := os.Open(manifestPath)
		if err != nil {
			return err
		}
		m, err := binder.LoadManifest(f)
		f.Close()
		if err != nil {
			return err
		}
		if err := b.ApplyManifest(m); err != nil {
			return err
		}
	}

	if statePath != "" {
		raw, err := os.ReadFile(statePath)
		if err != nil {
			return err
		}
		var state map[string]interface{}
		if err := json.Unmarshal(raw, &state); err != nil {
			return fmt.Errorf("decoding state: %w", err)
		}
		if err := b.Merge("", state); err != nil {
			return err
		}
	}

	if err := b.Flush(); err != nil {
		return err
	}

	fmt.Println(root.Render())
	return nil
}
