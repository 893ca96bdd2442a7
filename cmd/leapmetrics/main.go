// Package main provides the LeapMetrics CLI entry point.
package main

import (
	"os"

	"github.com/leapstack-labs/leapmetrics/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
