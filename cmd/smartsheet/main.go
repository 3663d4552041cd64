package main

import (
	"os"

	"github.com/aditsw/smartsheet/cmd/smartsheet/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
