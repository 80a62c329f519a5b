package main

import (
	"os"

	"github.com/rustyeddy/sectortrader/cmd/sectortrader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
