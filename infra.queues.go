package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Predefinied Queue IDs.
const (
	CreateQueue = "creation"
	UpdateQueue = "updating"
	DeleteQueue = "deletion"
)

var ErrQueueClosed = errors.New("queue closed")

var (
	_ Queuer = (*redisQueue)(nil) // ensure redisQueue implements Queuer.
	_ Queuer = (*nopQueue)(nil)   // ensure nopQueue implements Queuer.
)

// BookEvent describes a change applied to the books collection.
// Book is nil for deletions.
type BookEvent struct {
	Kind   string    `json:"kind"`
	BookID uint32    `json:"book_id"`
	Book   *Book     `json:"book"`
	At     time.Time `json:"at"`
}

// Queuer describes a queue of book events.
type Queuer interface {
	Push(ctx context.Context, qid string, event BookEvent) error
	Pop(ctx context.Context, qids ...string) (string, BookEvent, error)
}

// redisQueue represents a queue which implements the Queuer interface.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// Push enqueues an event onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, event BookEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, eventBytes).Err()
}

// Pop blocks until an event is available on one of the queue ids
// and returns it along with the queue id it was taken from.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, BookEvent, error) {
	var event BookEvent
	infos, err := q.client.BLPop(ctx, 0*time.Second, qids...).Result()
	if err != nil {
		return "", event, err
	}

	if err = json.Unmarshal([]byte(infos[1]), &event); err != nil {
		return "", event, err
	}
	return infos[0], event, nil
}

// nopQueue drops every pushed event. It is used when events are disabled.
type nopQueue struct{}

func NewNopQueue() Queuer {
	return nopQueue{}
}

func (nopQueue) Push(_ context.Context, _ string, _ BookEvent) error {
	return nil
}

// Pop waits for the context to be done since nothing is ever queued.
func (nopQueue) Pop(ctx context.Context, _ ...string) (string, BookEvent, error) {
	<-ctx.Done()
	return "", BookEvent{}, ErrQueueClosed
}
