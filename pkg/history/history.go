// Package history keeps a session history of in-app locations whose query
// parameters are edited through urlcodec maps.
//
// It stands in for the browser's history API on the server side: callers
// push or replace entries, move back and forward, and subscribe to changes.
//
//	h, _ := history.New("/search")
//	h.Set("q", "go", history.ModeReplace)
//	h.Set("page", "2", history.ModePush)
//	h.URL() // "/search?q=go&page=2"
package history

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/urlkit/internal/errors"
	"github.com/vango-dev/urlkit/pkg/routepath"
	"github.com/vango-dev/urlkit/pkg/urlcodec"
)

// Entry is one location in the history.
type Entry struct {
	// Path is the canonical path, "/" for the root.
	Path string

	// Params holds the query params and hash.
	Params *urlcodec.QueryParamMap
}

func (e Entry) clone() Entry {
	return Entry{Path: e.Path, Params: e.Params.Clone()}
}

// Listener is called after an entry is committed.
type Listener func(entry Entry, mode Mode)

// History is a session history. It is safe for concurrent use.
type History struct {
	mu      sync.Mutex
	entries []Entry
	index   int
	config  config

	listeners map[int]Listener
	nextID    int

	// Debounce state
	timer       *time.Timer
	pending     *Entry
	pendingMode Mode
	closed      bool
}

// New creates a history whose first entry is initial, a path with optional
// query and hash ("/search?q=go#results").
func New(initial string, opts ...Option) (*History, error) {
	var cfg config
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	h := &History{
		config:    cfg,
		listeners: make(map[int]Listener),
	}
	entry, err := h.parseEntry(initial)
	if err != nil {
		return nil, err
	}
	h.entries = []Entry{entry}
	return h, nil
}

func (h *History) parseEntry(target string) (Entry, error) {
	res, err := routepath.ValidateNavPath(target)
	if err != nil {
		return Entry{}, err
	}
	params := urlcodec.ParseQuery("?"+res.Query, h.config.codec...)
	params.SetHash(res.Hash)
	return Entry{Path: res.Path, Params: params}, nil
}

// Current returns a copy of the committed current entry.
func (h *History) Current() Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index].clone()
}

// URL renders the current entry as path + "?query#hash".
func (h *History) URL() string {
	e := h.Current()
	return e.Path + urlcodec.EncodeQuery(e.Params, h.config.codec...)
}

// Location returns the current "?query#hash" so a History can serve as a
// urlcodec.LocationProvider.
func (h *History) Location() string {
	return urlcodec.EncodeQuery(h.Current().Params, h.config.codec...)
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Index returns the position of the current entry.
func (h *History) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index
}

// Navigate replaces the query params (and hash) of the current path.
func (h *History) Navigate(params *urlcodec.QueryParamMap, mode Mode) {
	h.update(mode, func(e *Entry) {
		e.Params = params.Clone()
	})
}

// Set stores a single value under key, keeping the other params.
func (h *History) Set(key, value string, mode Mode) {
	h.SetValue(key, urlcodec.String(value), mode)
}

// SetValue stores v under key, keeping the other params.
func (h *History) SetValue(key string, v urlcodec.Value, mode Mode) {
	h.update(mode, func(e *Entry) {
		e.Params.Set(key, v)
	})
}

// Delete removes key from the params.
func (h *History) Delete(key string, mode Mode) {
	h.update(mode, func(e *Entry) {
		e.Params.Delete(key)
	})
}

// SetHash sets the fragment. An empty hash removes it.
func (h *History) SetHash(hash string, mode Mode) {
	h.update(mode, func(e *Entry) {
		e.Params.SetHash(hash)
	})
}

// Visit moves to a new path with its own query and hash. Absolute URLs are
// rejected; only in-app paths are accepted.
func (h *History) Visit(target string, mode Mode) error {
	next, err := h.parseEntry(target)
	if err != nil {
		return err
	}
	h.update(mode, func(e *Entry) {
		*e = next
	})
	return nil
}

// Back moves to the previous entry.
func (h *History) Back() (Entry, error) {
	return h.move(-1)
}

// Forward moves to the next entry.
func (h *History) Forward() (Entry, error) {
	return h.move(1)
}

func (h *History) move(delta int) (Entry, error) {
	h.mu.Lock()
	h.dropPendingLocked()
	target := h.index + delta
	if target < 0 || target >= len(h.entries) {
		h.mu.Unlock()
		return Entry{}, errors.New("U004")
	}
	h.index = target
	entry := h.entries[target].clone()
	listeners := h.snapshotListenersLocked()
	h.mu.Unlock()

	notify(listeners, entry, ModeReplace)
	return entry, nil
}

// Subscribe registers fn for committed changes and returns a function that
// removes it.
func (h *History) Subscribe(fn Listener) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

// Flush commits a debounced update immediately.
func (h *History) Flush() {
	h.mu.Lock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.commitPendingLocked()
}

// Close stops the debounce timer and discards an uncommitted update.
func (h *History) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.dropPendingLocked()
}

// update applies fn to a copy of the latest state and commits it, now or
// after the debounce window.
func (h *History) update(mode Mode, fn func(*Entry)) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}

	base := h.entries[h.index]
	if h.pending != nil {
		base = *h.pending
	}
	next := base.clone()
	fn(&next)

	if h.config.debounce > 0 {
		h.pending = &next
		h.pendingMode = mode
		if h.timer != nil {
			h.timer.Stop()
		}
		h.timer = time.AfterFunc(h.config.debounce, h.Flush)
		h.mu.Unlock()
		return
	}

	h.commitLocked(next, mode)
	listeners := h.snapshotListenersLocked()
	h.mu.Unlock()

	notify(listeners, next.clone(), mode)
}

// commitPendingLocked commits the pending entry and unlocks h.mu.
func (h *History) commitPendingLocked() {
	if h.pending == nil || h.closed {
		h.mu.Unlock()
		return
	}
	next, mode := *h.pending, h.pendingMode
	h.pending = nil
	h.commitLocked(next, mode)
	listeners := h.snapshotListenersLocked()
	h.mu.Unlock()

	notify(listeners, next.clone(), mode)
}

func (h *History) commitLocked(next Entry, mode Mode) {
	switch mode {
	case ModeReplace:
		h.entries[h.index] = next
	default:
		h.entries = append(h.entries[:h.index+1], next)
		h.index++
		if limit := h.config.maxEntries; limit > 0 && len(h.entries) > limit {
			drop := len(h.entries) - limit
			h.entries = append([]Entry(nil), h.entries[drop:]...)
			h.index -= drop
		}
	}
	h.config.logger.Debug("history commit",
		"mode", mode.String(),
		"path", next.Path,
		"params", next.Params.Len(),
		"entries", len(h.entries),
	)
}

func (h *History) dropPendingLocked() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.pending = nil
}

func (h *History) snapshotListenersLocked() []Listener {
	out := make([]Listener, 0, len(h.listeners))
	for id := 0; id < h.nextID; id++ {
		if fn, ok := h.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(listeners []Listener, entry Entry, mode Mode) {
	for _, fn := range listeners {
		fn(entry, mode)
	}
}
