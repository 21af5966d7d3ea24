package main

import (
	"context"
	"sync"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

type MockBookStorage struct {
	AddFunc    func(ctx context.Context, req CreateBookRequest) (Book, error)
	GetOneFunc func(ctx context.Context, id uint32) (Book, error)
	DeleteFunc func(ctx context.Context, id uint32) (bool, error)
	UpdateFunc func(ctx context.Context, id uint32, req UpdateBookRequest) (Book, error)
	GetAllFunc func(ctx context.Context) ([]Book, error)
	CountFunc  func(ctx context.Context) int
}

// Add mocks the behavior of book creation by the repository.
func (m *MockBookStorage) Add(ctx context.Context, req CreateBookRequest) (Book, error) {
	return m.AddFunc(ctx, req)
}

// GetOne mocks the behavior of retrieving a book by the repository.
func (m *MockBookStorage) GetOne(ctx context.Context, id uint32) (Book, error) {
	return m.GetOneFunc(ctx, id)
}

// Delete mocks the behavior of deleting a book by the repository.
func (m *MockBookStorage) Delete(ctx context.Context, id uint32) (bool, error) {
	return m.DeleteFunc(ctx, id)
}

// Update mocks the behavior of updating a book by the repository.
func (m *MockBookStorage) Update(ctx context.Context, id uint32, req UpdateBookRequest) (Book, error) {
	return m.UpdateFunc(ctx, id, req)
}

// GetAll mocks the behavior of retrieving all books by the repository.
func (m *MockBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	return m.GetAllFunc(ctx)
}

// Count mocks the number of books held by the repository. Zero when not set.
func (m *MockBookStorage) Count(ctx context.Context) int {
	if m.CountFunc == nil {
		return 0
	}
	return m.CountFunc(ctx)
}

// MockQueuer implements a fake Queuer. Pushed events are recorded.
type MockQueuer struct {
	PushFunc func(ctx context.Context, qid string, event BookEvent) error
	PopFunc  func(ctx context.Context, qids ...string) (string, BookEvent, error)

	mu     sync.Mutex
	pushed []BookEvent
}

// Push records the event then calls PushFunc if set.
func (mq *MockQueuer) Push(ctx context.Context, qid string, event BookEvent) error {
	mq.mu.Lock()
	mq.pushed = append(mq.pushed, event)
	mq.mu.Unlock()
	if mq.PushFunc == nil {
		return nil
	}
	return mq.PushFunc(ctx, qid, event)
}

// Pop mocks the behavior of a blocking pop call.
func (mq *MockQueuer) Pop(ctx context.Context, qids ...string) (string, BookEvent, error) {
	return mq.PopFunc(ctx, qids...)
}

// Pushed returns a copy of the events received so far.
func (mq *MockQueuer) Pushed() []BookEvent {
	mq.mu.Lock()
	defer mq.mu.Unlock()
	return append([]BookEvent(nil), mq.pushed...)
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// NewTicker returns a standard ticker so the mock can drive a zap logger.
func (mck *MockClocker) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}
