package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/laochendeai/tradingagents-go/internal/cli"
)

func main() {
	// API keys load from .env when present; a missing file is fine
	_ = godotenv.Load()

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
