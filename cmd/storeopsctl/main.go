package main

import (
	"os"
	_ "time/tzdata"

	"storeops/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
