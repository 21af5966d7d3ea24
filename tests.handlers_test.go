package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This file contains unit tests for each ops api handler.

// TestStatusHandler ensures api handler can provides its status.
func TestStatusHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	api := newTestAPIHandler(NewMemoryBookStorage(), nil)
	api.Status(w, req, httprouter.Params{})
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))
	m := make(map[string]interface{})
	err := json.Unmarshal([]byte(readBody(t, res)), &m)
	assert.NoError(t, err)

	_, ok := m["requestid"]
	assert.True(t, ok)

	v, ok := m["status"]
	assert.True(t, ok)
	assert.Equal(t, "up & running since 0 mins", v)

	v, ok = m["message"]
	assert.True(t, ok)
	assert.Equal(t, v, "Hello. Books store api is available. Enjoy :)")
}

func TestIndexHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	api := newTestAPIHandler(NewMemoryBookStorage(), nil)
	api.Index(w, req, httprouter.Params{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/status", w.Header().Get("Location"))
}

func TestNotFoundHandler(t *testing.T) {
	api := newTestAPIHandler(NewMemoryBookStorage(), nil)
	api.idsHandler = NewMockUIDHandler("abc", true)
	req := httptest.NewRequest(http.MethodGet, "/not_books", nil)
	w := httptest.NewRecorder()
	api.NotFound().ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	expected := `{"requestid":"r:abc", "message":"route does not exist", "path":"GET /not_books"}`
	assert.JSONEq(t, expected, readBody(t, res))
}

func TestMethodNotAllowedHandler(t *testing.T) {
	api := newTestAPIHandler(NewMemoryBookStorage(), nil)
	api.idsHandler = NewMockUIDHandler("abc", true)
	req := httptest.NewRequest(http.MethodPatch, "/books/1", nil)
	w := httptest.NewRecorder()
	api.MethodNotAllowed().ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	expected := `{"requestid":"r:abc", "message":"method not allowed on this route", "path":"PATCH /books/1"}`
	assert.JSONEq(t, expected, readBody(t, res))
}

func TestMaintenanceHandler(t *testing.T) {
	api := newTestAPIHandler(NewMemoryBookStorage(), nil)

	t.Run("enable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ops/maintenance?status=enable&msg=upgrade", nil)
		w := httptest.NewRecorder()
		api.Maintenance(w, req, httprouter.Params{})
		assert.Equal(t, http.StatusOK, w.Code)
		expected := `{"requestid":"", "maintenance.started":"Sun, 02 Jul 2023 00:00:00 UTC",
		"maintenance.message":"upgrade", "message":"Maintenance mode enabled successfully."}`
		assert.JSONEq(t, expected, w.Body.String())
		assert.True(t, api.mode.enabled.Load())
	})

	t.Run("show", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ops/maintenance", nil)
		w := httptest.NewRecorder()
		api.Maintenance(w, req, httprouter.Params{})
		expected := `{"requestid":"", "enabled":true, "message":"upgrade", "since":"Sun, 02 Jul 2023 00:00:00 UTC"}`
		assert.JSONEq(t, expected, w.Body.String())
	})

	t.Run("disable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ops/maintenance?status=disable", nil)
		w := httptest.NewRecorder()
		api.Maintenance(w, req, httprouter.Params{})
		expected := `{"requestid":"", "message":"Maintenance mode disabled successfully."}`
		assert.JSONEq(t, expected, w.Body.String())
		assert.False(t, api.mode.enabled.Load())
	})
}

func TestGetStatisticsHandler(t *testing.T) {
	storage := NewMemoryBookStorage()
	_, err := storage.Add(context.Background(), CreateBookRequest{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)
	api := newTestAPIHandler(storage, nil)
	api.stats.called = 3
	api.stats.status[http.StatusOK] = 2

	req := httptest.NewRequest(http.MethodGet, "/ops/stats", nil)
	w := httptest.NewRecorder()
	api.GetStatistics(w, req, httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)

	m := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, float64(2), m["called"])
	assert.Equal(t, float64(1), m["books"])
	assert.Equal(t, "0 mins", m["uptime"])
	assert.Equal(t, map[string]interface{}{"200": float64(2)}, m["status"])
	maintenance, ok := m["maintenance"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, maintenance["enabled"])
}

func TestGetConfigsHandler(t *testing.T) {
	api := newTestAPIHandler(NewMemoryBookStorage(), nil)
	api.config = DefaultConfig()
	api.config.Redis.Password = "secret"

	req := httptest.NewRequest(http.MethodGet, "/ops/configs", nil)
	w := httptest.NewRecorder()
	api.GetConfigs(w, req, httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.Contains(t, w.Body.String(), `"Host":"127.0.0.1"`)
}
