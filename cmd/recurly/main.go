package main

import (
	"os"
	"time"

	"github.com/flexprice/recurly-client/cmd/recurly/cmd"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
