package main

import (
	"context"
	"sort"
	"sync"
)

var _ BookStorage = (*memoryBookStorage)(nil) // ensure memoryBookStorage implements BookStorage.

// memoryBookStorage keeps all books in process memory. A single lock guards
// both the records and the ids counter, so an id is allocated and its book
// inserted as one step. Values never leave the storage without being cloned.
type memoryBookStorage struct {
	mu     sync.RWMutex
	books  map[uint32]Book
	nextID uint32
}

// NewMemoryBookStorage provides an empty in-memory book storage.
// The first created book gets the id 1.
func NewMemoryBookStorage() BookStorage {
	return &memoryBookStorage{
		books:  make(map[uint32]Book),
		nextID: 1,
	}
}

// Add stores a new book under the next available id.
func (ms *memoryBookStorage) Add(_ context.Context, req CreateBookRequest) (Book, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	id := ms.nextID
	ms.nextID++

	book := Book{
		ID:            id,
		Title:         req.Title,
		Author:        req.Author,
		PublishedYear: cloneUint16(req.PublishedYear),
		Genre:         cloneString(req.Genre),
		ISBN:          cloneString(req.ISBN),
	}
	ms.books[id] = book
	return book.Clone(), nil
}

// GetOne retrieves a book record based on its ID.
func (ms *memoryBookStorage) GetOne(_ context.Context, id uint32) (Book, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	book, found := ms.books[id]
	if !found {
		return Book{}, ErrBookNotFound
	}
	return book.Clone(), nil
}

// Delete removes a book record based on its ID. It reports
// whether the book existed. Removed ids are never reassigned.
func (ms *memoryBookStorage) Delete(_ context.Context, id uint32) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, found := ms.books[id]; !found {
		return false, nil
	}
	delete(ms.books, id)
	return true, nil
}

// Update merges the request into the existing book.
func (ms *memoryBookStorage) Update(_ context.Context, id uint32, req UpdateBookRequest) (Book, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	book, found := ms.books[id]
	if !found {
		return Book{}, ErrBookNotFound
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	book.PublishedYear = cloneUint16(req.PublishedYear)
	book.Genre = cloneString(req.Genre)
	book.ISBN = cloneString(req.ISBN)

	ms.books[id] = book
	return book.Clone(), nil
}

// GetAll returns a snapshot of all stored books sorted by id.
func (ms *memoryBookStorage) GetAll(_ context.Context) ([]Book, error) {
	books := ms.snapshot()
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

func (ms *memoryBookStorage) snapshot() []Book {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	books := make([]Book, 0, len(ms.books))
	for _, book := range ms.books {
		books = append(books, book.Clone())
	}
	return books
}

// Count returns the number of books currently stored.
func (ms *memoryBookStorage) Count(_ context.Context) int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.books)
}
