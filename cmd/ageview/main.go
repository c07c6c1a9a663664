// Package main is the entry point of the ageview CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/ageview/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
