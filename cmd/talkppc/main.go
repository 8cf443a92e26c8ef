// Package main provides the talkppc command, the Talk++ compiler CLI.
package main

import (
	"os"

	"github.com/talkpp-lang/talkpp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
