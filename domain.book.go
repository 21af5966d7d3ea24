package main

import (
	"context"
	"errors"
)

var ErrBookNotFound = errors.New("book not found")

// Book represents a book entity. Optional fields are
// pointers so they are rendered as `null` when absent.
type Book struct {
	ID            uint32  `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	PublishedYear *uint16 `json:"published_year"`
	Genre         *string `json:"genre"`
	ISBN          *string `json:"isbn"`
}

// CreateBookRequest carries the fields needed to build a new book.
// The identifier is always assigned by the storage.
type CreateBookRequest struct {
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	PublishedYear *uint16 `json:"published_year"`
	Genre         *string `json:"genre"`
	ISBN          *string `json:"isbn"`
}

// UpdateBookRequest carries a book modification. Title and Author are
// only applied when provided. PublishedYear, Genre and ISBN always replace
// the stored values, so leaving one of them out clears it.
type UpdateBookRequest struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	PublishedYear *uint16 `json:"published_year"`
	Genre         *string `json:"genre"`
	ISBN          *string `json:"isbn"`
}

// BookStorage defines possible operations on book entity.
type BookStorage interface {
	Add(ctx context.Context, req CreateBookRequest) (Book, error)
	GetOne(ctx context.Context, id uint32) (Book, error)
	Delete(ctx context.Context, id uint32) (bool, error)
	Update(ctx context.Context, id uint32, req UpdateBookRequest) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
	Count(ctx context.Context) int
}

// Clone returns a deep copy of the book so that
// the pointer fields are not shared with the caller.
func (b Book) Clone() Book {
	b.PublishedYear = cloneUint16(b.PublishedYear)
	b.Genre = cloneString(b.Genre)
	b.ISBN = cloneString(b.ISBN)
	return b
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneUint16(n *uint16) *uint16 {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
