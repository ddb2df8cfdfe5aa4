package main

import (
	"os"

	"github.com/baolabs/bao-deploy/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
