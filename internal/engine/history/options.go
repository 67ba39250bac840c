package history

import (
	"time"

	"github.com/google/uuid"
)

// Default configuration values.
const (
	DefaultMaxSize  = 100
	DefaultDebounce = time.Second
)

// Option configures a Store during creation.
type Option func(*options)

type options struct {
	maxSize   int
	debounce  time.Duration
	scheduler Scheduler
	now       func() time.Time
	newID     func() string
}

func defaultOptions() options {
	return options{
		maxSize:   DefaultMaxSize,
		debounce:  DefaultDebounce,
		scheduler: RealScheduler,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// WithMaxSize sets the maximum number of retained entries.
// New returns ErrInvalidMaxSize for values below one.
func WithMaxSize(n int) Option {
	return func(o *options) {
		o.maxSize = n
	}
}

// WithDebounce sets the coalescing window for Commit.
// Zero makes every Commit synchronous.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithScheduler sets the timer source used for debounced commits.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithClock sets the function used to timestamp entries.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator sets the function used to generate entry ids.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}
