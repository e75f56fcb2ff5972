package main

import (
	"os"

	"github.com/trainlog/trainlog/cmd/trainctl/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
