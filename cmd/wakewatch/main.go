package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra already rendered the error.
		os.Exit(1)
	}
}
