// Command sitetrack is the SiteTrack server binary: the HTTP API, the
// notification dispatcher, and the schema migration tool.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
