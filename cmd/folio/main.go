package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		// Cobra prints the error.
		os.Exit(1)
	}
}
