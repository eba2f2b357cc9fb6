package main

import (
	"fmt"
	"os"

	"github.com/raoulx24/atlas-archive/internal/cli"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Fprintf(os.Stderr, "atlas-archive: %v\n", err)
		os.Exit(1)
	}
}
