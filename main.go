// Package main is the entry point for the linemark CLI.
package main

import (
	"os"

	"linemark/cmd"
)

// Set via ldflags at release build time.
var (
	version = "dev"
	commit  = ""
)

func main() {
	v := version
	if commit != "" {
		v += " (" + commit + ")"
	}
	cmd.SetVersion(v)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
