package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/pokerlab/holdem-arena/internal/server"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	// Create and start arena server
	arenaServer, err := server.NewArenaServer()
	if err != nil {
		slog.Error("Failed to create arena server", "error", err)
		os.Exit(1)
	}

	// Start server (blocks until shutdown)
	if err := arenaServer.Start(); err != nil {
		slog.Error("Failed to start arena server", "error", err)
		os.Exit(1)
	}
}
