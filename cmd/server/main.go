package main

import (
	"flag"
	"os"
	"strconv"

	"roguie-server/internal/server"
	"roguie-server/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	var seed int64
	flag.Int64Var(&seed, "seed", 0, "Session seed (0 for random per session)")
	flag.Parse()

	if seed == 0 {
		if env := os.Getenv("SEED"); env != "" {
			parsed, err := strconv.ParseInt(env, 10, 64)
			if err != nil {
				logger.Log.Fatalf("invalid SEED %q: %v", env, err)
			}
			seed = parsed
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Log.Info("Starting roguie server...")

	srv := server.New(port, seed)
	if err := srv.Run(); err != nil {
		logger.Log.Fatal("Server start error:", err)
	}
}
