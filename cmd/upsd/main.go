// Command upsd runs the unified platform services provider behind an HTTP
// API.
package main

import (
	"context"
	"fmt"
	"os"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := executeContext(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "upsd: %v\n", err)
		os.Exit(1)
	}
}
