package main

import (
	"os"

	"github.com/wonny/aktietipset/backend/cmd/aktie/commands"
)

// main is the entry point for the AktieTipset CLI
// ⭐ Unified CLI entry point: go run ./cmd/aktie [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
