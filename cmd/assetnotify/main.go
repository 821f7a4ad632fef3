// Package main provides the entry point for the assetnotify CLI tool.
package main

import "github.com/itassetops/assetnotify/cmd/assetnotify/cmd"

// Version information populated at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
