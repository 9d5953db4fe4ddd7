package main

import (
	"os"

	"github.com/revmark/revmark/internal/cli"
)

func main() {
	exitCode, _ := cli.Run(os.Args, nil)
	os.Exit(exitCode)
}
