package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"nightsweep/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps configuration errors to a distinct status so wrapping
// scripts can tell "fix the config" from other failures.
func exitCode(err error) int {
	if services.IsFatal(err) {
		return 2
	}
	return 1
}
