package history

import (
	"log/slog"
	"time"

	"github.com/vango-dev/urlkit/pkg/urlcodec"
)

// Mode determines how a navigation is recorded.
type Mode int

const (
	// ModePush adds a new history entry.
	ModePush Mode = iota

	// ModeReplace overwrites the current entry (no back button spam).
	ModeReplace
)

// String returns "push" or "replace".
func (m Mode) String() string {
	if m == ModeReplace {
		return "replace"
	}
	return "push"
}

// ParseMode maps "push" and "replace" to a Mode. Anything else is ModePush.
func ParseMode(s string) Mode {
	if s == "replace" {
		return ModeReplace
	}
	return ModePush
}

// Option configures a History.
type Option interface {
	apply(*config)
}

type config struct {
	debounce   time.Duration
	maxEntries int
	codec      []urlcodec.Option
	logger     *slog.Logger
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// Debounce delays commits by d. Updates made within the window are merged
// and committed once, with the mode of the last update. Use it for search
// inputs so typing does not flood the history.
func Debounce(d time.Duration) Option {
	return optionFunc(func(c *config) {
		c.debounce = d
	})
}

// MaxEntries caps the number of entries kept; the oldest are dropped first.
// Zero means unlimited.
func MaxEntries(n int) Option {
	return optionFunc(func(c *config) {
		c.maxEntries = n
	})
}

// WithCodec sets the codec options (delimiter, list separator) used to
// render and parse query strings.
func WithCodec(opts ...urlcodec.Option) Option {
	return optionFunc(func(c *config) {
		c.codec = opts
	})
}

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(c *config) {
		c.logger = logger
	})
}
