package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
)

var ErrInvalidBookID = errors.New("invalid book id")

type (
	ContextKey        string
	missingFieldError string
)

const (
	RequestIDPrefix         string     = "r"
	RequestIDHeader         string     = "X-Request-ID"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
	MaxRequestBodySize      int64      = 1 << 20
)

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val, ok := ctx.Value(contextKey).(string); ok {
		return val
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val, ok := ctx.Value(RequestNumberContextKey).(uint64); ok {
		return val
	}
	return 0
}

// ParseBookID converts the route parameter into a book id. Any uint32 is
// accepted, ids that were never assigned (like 0) are left to the storage.
func ParseBookID(raw string) (uint32, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, ErrInvalidBookID
	}
	return uint32(id), nil
}

// createBookPayload mirrors CreateBookRequest with pointers on the
// required fields so that missing ones can be told apart from empty.
type createBookPayload struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	PublishedYear *uint16 `json:"published_year"`
	Genre         *string `json:"genre"`
	ISBN          *string `json:"isbn"`
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("request body is empty")
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

// DecodeCreateBookRequestBody is a helper function to read the content of a book creation
// request. Title and author must be present, any provided id is ignored.
func DecodeCreateBookRequestBody(w http.ResponseWriter, r *http.Request, req *CreateBookRequest) error {
	var payload createBookPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		return err
	}

	if payload.Title == nil {
		return missingFieldError("title")
	}

	if payload.Author == nil {
		return missingFieldError("author")
	}

	*req = CreateBookRequest{
		Title:         *payload.Title,
		Author:        *payload.Author,
		PublishedYear: payload.PublishedYear,
		Genre:         payload.Genre,
		ISBN:          payload.ISBN,
	}
	return nil
}

// DecodeUpdateBookRequestBody is a helper function to read the content of a book update request.
func DecodeUpdateBookRequestBody(w http.ResponseWriter, r *http.Request, req *UpdateBookRequest) error {
	return decodeJSONBody(w, r, req)
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		ip = strings.TrimSpace(ip)
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result. This
// helps know if the App is running in a docker container or not.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
