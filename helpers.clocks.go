package main

import (
	"time"
)

var (
	_ Clocker       = (*Clock)(nil) // ensure Clock implements Clocker
	_ TickerClocker = (*Clock)(nil) // ensure Clock implements TickerClocker
)

// Clocker is an interface for getting current real time.
type Clocker interface {
	Now() time.Time
}

// TickerClocker is an interface which can provides the current time and a ticker.
// It matches zapcore.Clock so the same clock drives logs timestamps.
type TickerClocker interface {
	Clocker
	NewTicker(time.Duration) *time.Ticker
}

// Clock implements the Clocker interface.
type Clock struct {
	tz *time.Location
}

// NewClock returns a ready to use Clock with timezone sets
// to UTC in production environment and Local in dev env.
func NewClock(isProd bool) *Clock {
	if isProd {
		return &Clock{time.UTC}
	}
	return &Clock{time.Local}
}

// Now provides current clock time.
func (ck *Clock) Now() time.Time {
	return time.Now().In(ck.tz)
}

// NewTicker returns a standard ticker.
func (ck *Clock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}
