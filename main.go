package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/funcscaffold/funcscaffold/internal/cli"
)

// version, commit, and date are set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// A .env file in the working directory may carry FUNCSCAFFOLD_* settings.
	_ = godotenv.Load()

	if err := cli.Execute(version, commit, date); err != nil {
		os.Exit(1)
	}
}
