// Package config provides configuration types and defaults for linemark.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"linemark/internal/block"
	"linemark/internal/grammar"
	"linemark/internal/inline"
	"linemark/internal/render"
)

// RenderConfig holds output options for the CLI surface.
type RenderConfig struct {
	// Width caps the preview's rendered width; 0 means no cap.
	Width int `mapstructure:"width"`
	// ShowMarks keeps syntax markers visible in the preview.
	ShowMarks bool `mapstructure:"show_marks"`
	// Style selects the preview palette: "dark" (default) or "light".
	Style string `mapstructure:"style"`
}

// GrammarConfig toggles built-in grammar rules by name.
type GrammarConfig struct {
	// DisableLine names line/block rules to disable, e.g. "CodeBlock".
	DisableLine []string `mapstructure:"disable_line"`
	// DisableInline names inline rules to disable, e.g. "Strikethrough".
	DisableInline []string `mapstructure:"disable_inline"`
}

// Config holds all configuration options for linemark.
type Config struct {
	Debug   bool          `mapstructure:"debug"`
	LogFile string        `mapstructure:"log_file"`
	Render  RenderConfig  `mapstructure:"render"`
	Grammar GrammarConfig `mapstructure:"grammar"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Render: RenderConfig{
			Width:     0,
			ShowMarks: true,
			Style:     "dark",
		},
	}
}

// DefaultLogFilePath returns ~/.config/linemark/debug.log, or an empty
// string if the home directory is unavailable.
func DefaultLogFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "linemark", "debug.log")
}

// Validate rejects rule names that do not exist in the built-in
// grammars, so typos surface at startup instead of silently keeping a
// rule enabled.
func (c Config) Validate() error {
	lineNames := make(map[string]bool)
	for _, e := range block.DefaultEntries(nil) {
		lineNames[e.Name] = true
	}
	for _, name := range c.Grammar.DisableLine {
		if !lineNames[name] {
			return fmt.Errorf("grammar.disable_line: unknown rule %q", name)
		}
	}

	inlineNames := make(map[string]bool)
	for _, e := range inline.DefaultEntries() {
		inlineNames[e.Name] = true
	}
	for _, name := range c.Grammar.DisableInline {
		if !inlineNames[name] {
			return fmt.Errorf("grammar.disable_inline: unknown rule %q", name)
		}
	}
	return nil
}

// DocumentOptions translates the grammar toggles into render options.
func (c Config) DocumentOptions() []render.Option {
	var opts []render.Option

	if len(c.Grammar.DisableLine) > 0 {
		overrides := make([]grammar.LineEntry, 0, len(c.Grammar.DisableLine))
		for _, name := range c.Grammar.DisableLine {
			overrides = append(overrides, grammar.DisabledLineEntry(name))
		}
		opts = append(opts, render.WithLineRules(overrides...))
	}

	if len(c.Grammar.DisableInline) > 0 {
		overrides := make([]grammar.InlineEntry, 0, len(c.Grammar.DisableInline))
		for _, name := range c.Grammar.DisableInline {
			overrides = append(overrides, grammar.DisabledInlineEntry(name))
		}
		opts = append(opts, render.WithInlineRules(overrides...))
	}

	return opts
}
