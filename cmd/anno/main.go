// Command anno is the command-line client for the annotation platform.
package main

import (
	"os"

	"github.com/annohub/anno/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
