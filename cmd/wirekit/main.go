// Package main is the entry point for the wirekit CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/kbukum/wirekit/version"
)

func main() {
	if err := newRootCmd(version.Get().String()).Execute(); err != nil {
		// Problems were already listed on stdout.
		if !errors.Is(err, errProblems) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
