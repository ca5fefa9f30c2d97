// Package main provides the polars command-line interface.
package main

import (
	"os"

	"github.com/bertiewooster/polars/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
