package main

import (
	"os"

	"prism/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
