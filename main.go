package main

import (
	"os"

	"github.com/evpark/evpark/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
