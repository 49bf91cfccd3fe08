package main

import (
	"os"

	"github.com/wonny/schloss/cmd/schloss/commands"
)

// main is the entry point for the screener CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/schloss [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
