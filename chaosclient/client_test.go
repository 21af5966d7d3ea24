package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeServer mimics the books api routes and records every request it gets.
type fakeServer struct {
	mu       sync.Mutex
	nextID   uint32
	books    map[uint32]string
	requests []string
}

func newFakeServer() *fakeServer {
	return &fakeServer{nextID: 1, books: make(map[uint32]string)}
}

func (fs *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.requests = append(fs.requests, r.Method+" "+r.URL.Path)

	if r.URL.Path == "/books" {
		switch r.Method {
		case http.MethodGet:
			list := make([]book, 0, len(fs.books))
			for id, title := range fs.books {
				list = append(list, book{ID: id, Title: title})
			}
			_ = json.NewEncoder(w).Encode(list)
		case http.MethodPost:
			var payload map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload["author"] == nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			id := fs.nextID
			fs.nextID++
			fs.books[id] = fmt.Sprint(payload["title"])
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(book{ID: id, Title: fs.books[id]})
		}
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/books/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	n, _ := strconv.ParseUint(strings.TrimPrefix(r.URL.Path, "/books/"), 10, 32)
	id := uint32(n)
	if _, ok := fs.books[id]; !ok && r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Book with ID %d not found", id)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodPut:
		_ = json.NewEncoder(w).Encode(book{ID: id, Title: fs.books[id]})
	case http.MethodDelete:
		delete(fs.books, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (fs *fakeServer) seen() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]string(nil), fs.requests...)
}

func TestClientRunSeedsBooks(t *testing.T) {
	fs := newFakeServer()
	srv := httptest.NewServer(fs)
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.Client(), srv.URL+"/", 1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, client.Run(ctx, time.Millisecond, 2*time.Millisecond))

	requests := fs.seen()
	require.GreaterOrEqual(t, len(requests), 4)
	assert.Equal(t, []string{"POST /books", "POST /books", "POST /books", "GET /books"}, requests[:4])
	assert.Greater(t, client.sent, uint64(0))
}

func TestClientValidRounds(t *testing.T) {
	fs := newFakeServer()
	srv := httptest.NewServer(fs)
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.Client(), srv.URL, 1, 42)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		client.createBook(ctx, true)
	}
	require.Len(t, client.ids, 3)

	for i := 0; i < 30; i++ {
		client.Round(ctx)
	}
	for _, req := range fs.seen() {
		assert.NotEqual(t, "PATCH /books/1", req)
		assert.NotEqual(t, "GET /not_books", req)
		assert.NotEqual(t, "GET /books/999999", req)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.Len(t, client.ids, len(fs.books))
}

func TestClientInvalidRounds(t *testing.T) {
	fs := newFakeServer()
	srv := httptest.NewServer(fs)
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.Client(), srv.URL, 0, 7)
	ctx := context.Background()
	client.createBook(ctx, true)

	for i := 0; i < 60; i++ {
		client.Round(ctx)
	}

	fs.mu.Lock()
	assert.Len(t, fs.books, 1)
	fs.mu.Unlock()

	seen := make(map[string]bool)
	for _, req := range fs.seen() {
		seen[req] = true
	}
	assert.True(t, seen["GET /books/999999"])
	assert.True(t, seen["PATCH /books/1"])
	assert.True(t, seen["GET /not_books"])
	assert.True(t, seen["DELETE /books/101"])
}

func TestClientDelay(t *testing.T) {
	client := NewClient(zap.NewNop(), http.DefaultClient, "http://localhost", 0.75, 1)
	for i := 0; i < 20; i++ {
		d := client.delay(500*time.Millisecond, 2*time.Second)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.Less(t, d, 2*time.Second)
	}
	assert.Equal(t, time.Second, client.delay(time.Second, time.Second))
}
