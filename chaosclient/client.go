package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	missingBookID  = 999999
	summaryEvery   = 20
	maxBodyLogSize = 256
)

type sampleBook struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	PublishedYear uint16 `json:"published_year"`
	Genre         string `json:"genre"`
	ISBN          string `json:"isbn"`
}

var sampleBooks = []sampleBook{
	{"The Rust Programming Language", "Steve Klabnik", 2018, "Programming", "978-1718500440"},
	{"Eloquent JavaScript", "Marijn Haverbeke", 2018, "Programming", "978-1593279509"},
	{"The Hitchhiker's Guide to the Galaxy", "Douglas Adams", 1979, "Science Fiction", "978-0345391803"},
	{"1984", "George Orwell", 1949, "Dystopian", "978-0451524935"},
	{"To Kill a Mockingbird", "Harper Lee", 1960, "Fiction", "978-0061120084"},
}

type book struct {
	ID    uint32 `json:"id"`
	Title string `json:"title"`
}

type operation func(ctx context.Context)

// Client sends a mix of valid and invalid requests to a books server.
// It is not safe for concurrent use.
type Client struct {
	logger     *zap.Logger
	http       *http.Client
	server     string
	rnd        *rand.Rand
	validRatio float64
	ids        []uint32
	sent       uint64
}

func NewClient(logger *zap.Logger, httpClient *http.Client, server string, validRatio float64, seed int64) *Client {
	return &Client{
		logger:     logger,
		http:       httpClient,
		server:     strings.TrimSuffix(server, "/"),
		rnd:        rand.New(rand.NewSource(seed)),
		validRatio: validRatio,
	}
}

// Run seeds a few books then sends requests until the context is done.
func (c *Client) Run(ctx context.Context, minDelay, maxDelay time.Duration) error {
	c.logger.Info("starting chaos client", zap.String("server", c.server))
	for i := 0; i < 3; i++ {
		c.createBook(ctx, true)
	}

	for {
		c.Round(ctx)
		c.sent++
		if c.sent%summaryEvery == 0 {
			c.logger.Info("summary", zap.Uint64("requests.sent", c.sent), zap.Int("books.tracked", len(c.ids)))
		}

		select {
		case <-ctx.Done():
			c.logger.Info("chaos client stopped", zap.Uint64("requests.sent", c.sent))
			return nil
		case <-time.After(c.delay(minDelay, maxDelay)):
		}
	}
}

// Round refreshes the known ids then runs one random operation.
func (c *Client) Round(ctx context.Context) {
	c.getAllBooks(ctx)
	ops := c.invalidOperations()
	if c.rnd.Float64() < c.validRatio {
		ops = c.validOperations()
	}
	ops[c.rnd.Intn(len(ops))](ctx)
}

func (c *Client) validOperations() []operation {
	return []operation{
		func(ctx context.Context) { c.getBook(ctx, c.knownID()) },
		func(ctx context.Context) { c.createBook(ctx, true) },
		func(ctx context.Context) { c.updateBook(ctx, true) },
		func(ctx context.Context) { c.deleteBook(ctx, true) },
	}
}

func (c *Client) invalidOperations() []operation {
	return []operation{
		func(ctx context.Context) { c.getBook(ctx, missingBookID) },
		func(ctx context.Context) { c.createBook(ctx, false) },
		func(ctx context.Context) { c.updateBook(ctx, false) },
		func(ctx context.Context) { c.deleteBook(ctx, false) },
		c.sendWrongMethod,
		c.requestMissingEndpoint,
	}
}

func (c *Client) delay(minDelay, maxDelay time.Duration) time.Duration {
	if maxDelay <= minDelay {
		return minDelay
	}
	return minDelay + time.Duration(c.rnd.Int63n(int64(maxDelay-minDelay)))
}

// knownID picks a tracked id, or 1 when none is tracked.
func (c *Client) knownID() uint32 {
	if len(c.ids) == 0 {
		return 1
	}
	return c.ids[c.rnd.Intn(len(c.ids))]
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.server+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, err
	}
	return res.StatusCode, data, nil
}

func truncate(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxBodyLogSize {
		return s[:maxBodyLogSize] + "..."
	}
	return s
}

func (c *Client) failed(msg string, status int, data []byte) {
	c.logger.Warn(msg, zap.Int("response.status", status), zap.String("response.body", truncate(data)))
}

func (c *Client) getAllBooks(ctx context.Context) {
	status, data, err := c.do(ctx, http.MethodGet, "/books", nil)
	if err != nil {
		c.logger.Error("failed to get books", zap.Error(err))
		return
	}
	if status != http.StatusOK {
		c.failed("failed to get books", status, data)
		return
	}

	var books []book
	if err = json.Unmarshal(data, &books); err != nil {
		c.logger.Error("failed to decode books", zap.Error(err))
		return
	}
	c.ids = c.ids[:0]
	for _, b := range books {
		c.ids = append(c.ids, b.ID)
	}
	c.logger.Info("retrieved all books", zap.Int("books.total", len(books)))
}

func (c *Client) getBook(ctx context.Context, id uint32) {
	path := fmt.Sprintf("/books/%d", id)
	status, data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		c.logger.Error("failed to get book", zap.Uint32("book.id", id), zap.Error(err))
		return
	}
	if status != http.StatusOK {
		c.failed("failed to get book", status, data)
		return
	}
	var b book
	_ = json.Unmarshal(data, &b)
	c.logger.Info("retrieved book", zap.Uint32("book.id", id), zap.String("book.title", b.Title))
}

func (c *Client) createBook(ctx context.Context, valid bool) {
	var payload interface{}
	if valid {
		sample := sampleBooks[c.rnd.Intn(len(sampleBooks))]
		sample.Title = fmt.Sprintf("%s - %d", sample.Title, 1000+c.rnd.Intn(9000))
		payload = sample
	} else {
		payload = map[string]string{"title": "Incomplete Book"}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("failed to encode book", zap.Error(err))
		return
	}

	status, data, err := c.do(ctx, http.MethodPost, "/books", body)
	if err != nil {
		c.logger.Error("failed to create book", zap.Error(err))
		return
	}
	if status != http.StatusCreated {
		c.failed("failed to create book", status, data)
		return
	}
	var b book
	if err = json.Unmarshal(data, &b); err != nil {
		c.logger.Error("failed to decode created book", zap.Error(err))
		return
	}
	c.ids = append(c.ids, b.ID)
	c.logger.Info("created book", zap.Uint32("book.id", b.ID), zap.String("book.title", b.Title))
}

func (c *Client) updateBook(ctx context.Context, valid bool) {
	if len(c.ids) == 0 {
		c.logger.Warn("no books to update, skipping")
		return
	}
	id := c.knownID()
	path := fmt.Sprintf("/books/%d", id)

	body := []byte("This is not valid JSON")
	if valid {
		body, _ = json.Marshal(map[string]string{"title": "Updated Title - " + time.Now().Format("15:04:05")})
	}

	status, data, err := c.do(ctx, http.MethodPut, path, body)
	if err != nil {
		c.logger.Error("failed to update book", zap.Uint32("book.id", id), zap.Error(err))
		return
	}
	if status != http.StatusOK {
		c.failed("failed to update book", status, data)
		return
	}
	c.logger.Info("updated book", zap.Uint32("book.id", id))
}

func (c *Client) deleteBook(ctx context.Context, valid bool) {
	if len(c.ids) == 0 {
		c.logger.Warn("no books to delete, skipping")
		return
	}
	id := c.knownID()
	if !valid {
		id = c.maxID() + 100
	}

	status, data, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/books/%d", id), nil)
	if err != nil {
		c.logger.Error("failed to delete book", zap.Uint32("book.id", id), zap.Error(err))
		return
	}
	if status != http.StatusNoContent {
		c.failed("failed to delete book", status, data)
		return
	}
	c.forget(id)
	c.logger.Info("deleted book", zap.Uint32("book.id", id))
}

func (c *Client) sendWrongMethod(ctx context.Context) {
	status, data, err := c.do(ctx, http.MethodPatch, "/books/1", []byte(`{"title":"This won't work"}`))
	if err != nil {
		c.logger.Error("failed to send wrong method", zap.Error(err))
		return
	}
	c.failed("sent PATCH request", status, data)
}

func (c *Client) requestMissingEndpoint(ctx context.Context) {
	status, data, err := c.do(ctx, http.MethodGet, "/not_books", nil)
	if err != nil {
		c.logger.Error("failed to request missing endpoint", zap.Error(err))
		return
	}
	c.failed("requested missing endpoint", status, data)
}

func (c *Client) maxID() uint32 {
	var m uint32
	for _, id := range c.ids {
		if id > m {
			m = id
		}
	}
	return m
}

func (c *Client) forget(id uint32) {
	for i, known := range c.ids {
		if known == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			return
		}
	}
}
