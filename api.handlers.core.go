package main

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultLimiterTTL = 3 * time.Minute

// Statistics holds app stats for ops.
type Statistics struct {
	version   string
	container bool
	runtime   string
	platform  string
	called    uint64
	started   time.Time
	status    map[int]uint64
	mu        *sync.RWMutex
}

// Maintenance holds app maintenance mode infos.
type Maintenance struct {
	enabled atomic.Bool
	mu      sync.RWMutex
	message string
	started time.Time
}

// APIHandler defines the API handler.
type APIHandler struct {
	logger      *zap.Logger
	config      *Config
	stats       *Statistics
	mode        *Maintenance
	clock       Clocker
	idsHandler  UIDHandler
	bookService BookServiceProvider
	limitersMu  sync.Mutex
	limiters    *ttlcache.Cache[string, *rate.Limiter]
}

// NewAPIHandler provides a new instance of APIHandler.
func NewAPIHandler(logger *zap.Logger, config *Config, stats *Statistics, clock Clocker, idsHandler UIDHandler, bs BookServiceProvider) *APIHandler {
	m := &Maintenance{}
	m.enabled.Store(false)
	stats.status = make(map[int]uint64)
	stats.mu = &sync.RWMutex{}
	ttl := defaultLimiterTTL
	if config != nil && config.Limiter.TTL > 0 {
		ttl = config.Limiter.TTL
	}
	return &APIHandler{
		logger:      logger,
		config:      config,
		stats:       stats,
		mode:        m,
		clock:       clock,
		idsHandler:  idsHandler,
		bookService: bs,
		limiters:    ttlcache.New[string, *rate.Limiter](ttlcache.WithTTL[string, *rate.Limiter](ttl)),
	}
}

// ExpireLimiters runs the removal of idle clients limiters until the context is done.
func (api *APIHandler) ExpireLimiters(ctx context.Context) func() error {
	return func() error {
		go api.limiters.Start()
		<-ctx.Done()
		api.limiters.Stop()
		return nil
	}
}
