package main

import (
	"os"

	"github.com/kattalitextile/sitekit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
