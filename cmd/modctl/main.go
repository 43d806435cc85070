// Package main - modctl
// Operator CLI for moderation actions outside the HTTP API.
//
// Usage:
//
//	go run ./cmd/modctl --actor 1 ban 42 --reason "spam ring"
//	go run ./cmd/modctl --actor 1 adjust-trust 42 --delta -10
//	go run ./cmd/modctl token --user 1 --admin
package main

import (
	"os"

	"github.com/imadgeboyega/kiekky-nearby/cmd/modctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
