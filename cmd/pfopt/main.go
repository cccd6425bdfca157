package main

import (
	"os"

	"github.com/wonny/pfopt/cmd/pfopt/commands"
)

// main is the entry point for the pfopt CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/pfopt [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
