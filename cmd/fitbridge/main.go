package main

import (
	"os"

	"github.com/fitbridge/fitbridge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
