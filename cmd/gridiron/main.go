// Package main provides the entry point for the gridiron CLI tool.
package main

import (
	"github.com/huddlestats/gridiron/cmd/gridiron/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
