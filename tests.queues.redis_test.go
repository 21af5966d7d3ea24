package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRedisDockerContainer(t *testing.T) (string, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Failed to start Dockertest: %+v", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		t.Skipf("Could not connect to Docker: %+v", err)
	}

	resource, err := pool.Run("redis", "7.0.10-alpine", nil)
	if err != nil {
		t.Fatalf("Failed to start redis: %+v", err)
	}

	// build address the container is listening on
	addr := net.JoinHostPort("localhost", resource.GetPort("6379/tcp"))

	// ensure to wait for the container to be ready
	err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	})

	if err != nil {
		t.Fatalf("Failed to ping Redis: %+v", err)
	}

	destroyFunc := func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return addr, destroyFunc
}

func TestRedisQueue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	addr, destroyFunc := startRedisDockerContainer(t)
	defer destroyFunc()

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	config := DefaultConfig()
	config.Redis.Host, config.Redis.Port = host, port
	client, err := GetRedisClient(config)
	require.NoError(t, err)
	defer client.Close()

	q := NewRedisQueue(client)
	ctx := context.Background()
	at := NewMockClocker().Now()

	t.Run("Push And Pop", func(t *testing.T) {
		event := BookEvent{Kind: CreateQueue, BookID: 1, Book: &Book{ID: 1, Title: "Dune", Author: "Herbert"}, At: at}
		require.NoError(t, q.Push(ctx, CreateQueue, event))

		qid, got, err := q.Pop(ctx, CreateQueue, UpdateQueue, DeleteQueue)
		require.NoError(t, err)
		assert.Equal(t, CreateQueue, qid)
		assert.Equal(t, event.BookID, got.BookID)
		assert.Equal(t, event.Book, got.Book)
		assert.True(t, at.Equal(got.At))
	})

	t.Run("Pop From Any Queue", func(t *testing.T) {
		require.NoError(t, q.Push(ctx, DeleteQueue, BookEvent{Kind: DeleteQueue, BookID: 7, At: at}))
		qid, got, err := q.Pop(ctx, CreateQueue, UpdateQueue, DeleteQueue)
		require.NoError(t, err)
		assert.Equal(t, DeleteQueue, qid)
		assert.Equal(t, uint32(7), got.BookID)
		assert.Nil(t, got.Book)
	})

	t.Run("Pop Stops With Context", func(t *testing.T) {
		cctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
		_, _, err := q.Pop(cctx, UpdateQueue)
		assert.Error(t, err)
	})
}
