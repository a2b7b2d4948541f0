// Command specfuse reconciles multi-source product data into versioned
// canonical records.
package main

import (
	"github.com/specfuse/specfuse/internal/cmd"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
