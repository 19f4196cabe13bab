package main

import (
	"os"

	"github.com/meridianhq/meridian/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
