// Package main provides the leapoql command.
package main

import (
	"os"

	"github.com/leapstack-labs/leapoql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
