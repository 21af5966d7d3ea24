package main

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TestAppLifecycle ensures all group members exit once the parent context is done.
func TestAppLifecycle(t *testing.T) {
	config := DefaultConfig()
	config.Server.Port = "0"
	config.Server.ShutdownTimeout = time.Second

	var consumed atomic.Bool
	app := &App{
		logger: zap.NewNop(),
		config: config,
		server: &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()},
		api:    newTestAPIHandler(NewMemoryBookStorage(), nil),
		queueConsumers: []func(context.Context) error{
			func(ctx context.Context) error {
				consumed.Store(true)
				return NewAuditConsumer(zap.NewNop(), NewNopQueue()).Consume(ctx, CreateQueue)
			},
		},
	}

	nCtx, cancel := context.WithCancel(context.Background())
	g, gCtx := errgroup.WithContext(nCtx)
	g.Go(app.ConsumeQueues(gCtx, g))
	g.Go(app.api.ExpireLimiters(gCtx))
	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	time.AfterFunc(100*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.True(t, consumed.Load())
}

func TestAppClean(t *testing.T) {
	var calls int
	app := &App{cleanups: []func() error{
		func() error { calls++; return nil },
		func() error { calls++; return assert.AnError },
	}}
	app.Clean()
	assert.Equal(t, 2, calls)
}
