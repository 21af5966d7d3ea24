// Command chaosclient continuously sends a mix of valid and invalid
// requests to a running books server until interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "base url of the books server")
	minDelay := flag.Duration("min-delay", 500*time.Millisecond, "minimum pause between two requests")
	maxDelay := flag.Duration("max-delay", 2*time.Second, "maximum pause between two requests")
	validRatio := flag.Float64("valid-ratio", 0.75, "share of valid requests between 0 and 1")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random generator seed")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal("failed to setup logging: ", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := NewClient(logger, &http.Client{Timeout: 10 * time.Second}, *server, *validRatio, *seed)
	if err = client.Run(ctx, *minDelay, *maxDelay); err != nil {
		logger.Error("chaos client failed", zap.Error(err))
	}
}
