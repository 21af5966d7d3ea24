package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var EmptyData = struct{}{}

// APIError is the data model sent when an error occurred during request processing.
type APIError struct {
	RequestID string      `json:"requestid"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
}

// StatusResponse is the data model sent when status endpoint is called.
type StatusResponse struct {
	RequestID string `json:"requestid"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

func NewAPIError(requestid string, status int, message string, data interface{}) *APIError {
	return &APIError{
		RequestID: requestid,
		Status:    status,
		Message:   message,
		Data:      data,
	}
}

// checkContext sets the status code to 499 (nginx Client Closed Request) in
// case client cancelled the request, and to 504 if the request processing
// timed out. In both cases nothing else is written.
func checkContext(ctx context.Context, w http.ResponseWriter) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusGatewayTimeout)
		} else {
			w.WriteHeader(499)
		}
		return err
	}
	return nil
}

// WriteErrorResponse is used to send json error response to client.
func WriteErrorResponse(ctx context.Context, w http.ResponseWriter, errResp *APIError) error {
	if err := checkContext(ctx, w); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(errResp.Status)
	return json.NewEncoder(w).Encode(errResp)
}

// WriteResponse sends the data as json body with the provided status code.
func WriteResponse(ctx context.Context, w http.ResponseWriter, status int, data interface{}) error {
	if err := checkContext(ctx, w); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteNoContentResponse sends an empty body with 204 status code.
func WriteNoContentResponse(ctx context.Context, w http.ResponseWriter) error {
	if err := checkContext(ctx, w); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// BookNotFoundMessage is the plain text body sent when a book id is unknown.
func BookNotFoundMessage(id uint32) string {
	return fmt.Sprintf("Book with ID %d not found", id)
}

// WriteBookNotFoundResponse sends the plain text not found message with 404 status code.
func WriteBookNotFoundResponse(ctx context.Context, w http.ResponseWriter, id uint32) error {
	if err := checkContext(ctx, w); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusNotFound)
	_, err := fmt.Fprint(w, BookNotFoundMessage(id))
	return err
}
