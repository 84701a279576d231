// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

// Package main is the entry point for the meddsl CLI.
package main

import (
	"log/slog"
	"os"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		slog.Error("meddsl failed", "error", err)
		os.Exit(1)
	}
}
