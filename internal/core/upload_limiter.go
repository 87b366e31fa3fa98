package core

// upload_limiter.go bounds how many files are transformed at once.
//
// Each processed file holds a slot for the duration of parse, transform and
// serialize. When every slot is taken, callers wait up to maxWait and then get
// ErrTooManyUploads. WaitForDrain is used on shutdown.

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrTooManyUploads is returned when no slot frees up within the wait time.
var ErrTooManyUploads = errors.New("too many uploads in progress, please try again later")

const (
	DefaultMaxConcurrentUploads = 5
	DefaultMaxWaitTime          = 30 * time.Second
)

// UploadLimiter is a counting semaphore over file processing.
type UploadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// LimiterStatus is a snapshot of limiter usage.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// NewUploadLimiter allows at most maxConcurrent files in flight.
// Non-positive arguments fall back to the defaults.
func NewUploadLimiter(maxConcurrent int, maxWait time.Duration) *UploadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentUploads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &UploadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot and returns the function that gives it back.
// The release function is safe to call more than once.
func (l *UploadLimiter) Acquire(ctx context.Context) (func(), error) {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
	case <-timer.C:
		return nil, ErrTooManyUploads
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	l.active.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			l.active.Add(-1)
			<-l.slots
		})
	}, nil
}

// Status returns the current usage.
func (l *UploadLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        int(l.active.Load()),
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}

// WaitForDrain blocks until no slot is held or ctx is done.
func (l *UploadLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.active.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
