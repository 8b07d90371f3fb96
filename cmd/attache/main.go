package main

import (
	"os"

	"github.com/attachehq/attache/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
