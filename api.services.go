package main

import (
	"context"

	"go.uber.org/zap"
)

type BookServiceProvider interface {
	Add(ctx context.Context, req CreateBookRequest) (Book, error)
	GetOne(ctx context.Context, id uint32) (Book, error)
	Delete(ctx context.Context, id uint32) (bool, error)
	Update(ctx context.Context, id uint32, req UpdateBookRequest) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
	Count(ctx context.Context) int
}

// BookService forwards each call to the storage and publishes
// an event once a change has been applied successfully.
type BookService struct {
	logger  *zap.Logger
	config  *Config
	clock   Clocker
	storage BookStorage
	queue   Queuer
}

func NewBookService(logger *zap.Logger, config *Config, clock Clocker, storage BookStorage, queue Queuer) BookServiceProvider {
	if queue == nil {
		queue = NewNopQueue()
	}
	return &BookService{
		logger:  logger,
		config:  config,
		clock:   clock,
		storage: storage,
		queue:   queue,
	}
}

// publish never fails the caller. A lost event is only logged.
func (bs *BookService) publish(ctx context.Context, qid string, id uint32, book *Book) {
	event := BookEvent{Kind: qid, BookID: id, Book: book, At: bs.clock.Now()}
	if err := bs.queue.Push(ctx, qid, event); err != nil {
		bs.logger.Error("service: failed to push to queue", zap.String("qid", qid), zap.Uint32("book.id", id), zap.Error(err))
	}
}

func (bs *BookService) Add(ctx context.Context, req CreateBookRequest) (Book, error) {
	book, err := bs.storage.Add(ctx, req)
	if err != nil {
		return book, err
	}
	bs.publish(ctx, CreateQueue, book.ID, &book)
	return book, nil
}

func (bs *BookService) GetOne(ctx context.Context, id uint32) (Book, error) {
	return bs.storage.GetOne(ctx, id)
}

func (bs *BookService) Delete(ctx context.Context, id uint32) (bool, error) {
	found, err := bs.storage.Delete(ctx, id)
	if err != nil || !found {
		return found, err
	}
	bs.publish(ctx, DeleteQueue, id, nil)
	return true, nil
}

func (bs *BookService) Update(ctx context.Context, id uint32, req UpdateBookRequest) (Book, error) {
	book, err := bs.storage.Update(ctx, id, req)
	if err != nil {
		return book, err
	}
	bs.publish(ctx, UpdateQueue, book.ID, &book)
	return book, nil
}

func (bs *BookService) GetAll(ctx context.Context) ([]Book, error) {
	return bs.storage.GetAll(ctx)
}

func (bs *BookService) Count(ctx context.Context) int {
	return bs.storage.Count(ctx)
}
