package main

import (
	"os"

	"github.com/ovote/ovote/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
