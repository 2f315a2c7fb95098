package main

import (
	"fmt"
	"os"

	"github.com/ErlanBelekov/portfolio/cmd/portfolioctl/cli"
)

// Set via -ldflags at build time
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, cli.Describe(err))
		os.Exit(1)
	}
}
