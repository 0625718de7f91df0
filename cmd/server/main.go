package main

import (
	"log"
	"log/slog"
	"os"

	"hrkey/internal/app/server"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := server.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
