// Package session wires document histories to configuration, logging and
// metrics.
//
// A Manager holds the current configuration and opens sessions from it.
// Each Session owns one canvas history and one schema history. Changing the
// configuration affects sessions opened afterwards; a history keeps the
// settings it was created with.
package session

import (
	"fmt"
	"sync"

	"github.com/dshills/blockforge/internal/config"
	"github.com/dshills/blockforge/internal/engine/canvas"
	"github.com/dshills/blockforge/internal/engine/history"
	"github.com/dshills/blockforge/internal/engine/schema"
	"github.com/dshills/blockforge/internal/logging"
	"github.com/dshills/blockforge/internal/metrics"
	"github.com/dshills/blockforge/internal/notify"
)

// Store names used in logs and metric labels.
const (
	StoreCanvas = "canvas"
	StoreSchema = "schema"
)

// Manager opens sessions using the current configuration.
type Manager struct {
	mu      sync.RWMutex
	cfg     config.Config
	logger  *logging.Logger
	metrics *metrics.Collector
	opts    []history.Option
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics records history activity in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(m *Manager) {
		m.metrics = c
	}
}

// WithHistoryOptions appends store options to every history opened, after
// the configured size and debounce.
func WithHistoryOptions(opts ...history.Option) Option {
	return func(m *Manager) {
		m.opts = append(m.opts, opts...)
	}
}

// NewManager creates a manager for cfg.
func NewManager(cfg config.Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}

	m := &Manager{
		cfg:    cfg,
		logger: logging.Null(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Config returns the configuration new sessions use.
func (m *Manager) Config() config.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// SetConfig replaces the configuration for sessions opened from now on.
// An invalid configuration is rejected and the previous one kept.
func (m *Manager) SetConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("session config: %w", err)
	}

	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()

	m.logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	m.logger.WithFields(map[string]any{
		"canvasMaxSize": cfg.Canvas.MaxSize,
		"schemaMaxSize": cfg.Schema.MaxSize,
	}).Info("configuration updated")
	return nil
}

// Open creates a session whose histories start from blocks and tables.
func (m *Manager) Open(blocks []canvas.Block, tables []schema.Table) (*Session, error) {
	cfg := m.Config()

	canvasHist, err := canvas.New(blocks, m.historyOptions(cfg.Canvas)...)
	if err != nil {
		return nil, err
	}
	schemaHist, err := schema.New(tables, m.historyOptions(cfg.Schema)...)
	if err != nil {
		canvasHist.Close()
		return nil, err
	}

	s := &Session{
		Canvas: canvasHist,
		Schema: schemaHist,
		logger: m.logger.WithComponent("session"),
	}
	s.watch(StoreCanvas, canvasHist.Subscribe, m)
	s.watch(StoreSchema, schemaHist.Subscribe, m)

	s.logger.Debug("opened with %d blocks and %d tables", len(blocks), len(tables))
	return s, nil
}

func (m *Manager) historyOptions(h config.HistoryConfig) []history.Option {
	opts := []history.Option{
		history.WithMaxSize(h.MaxSize),
		history.WithDebounce(h.Debounce()),
	}
	return append(opts, m.opts...)
}

// Session is one open document: a canvas and its database schema.
type Session struct {
	Canvas *canvas.History
	Schema *schema.History

	logger *logging.Logger
	subs   []*notify.Subscription
	once   sync.Once
}

func (s *Session) watch(store string, subscribe func(func(history.Change)) *notify.Subscription, m *Manager) {
	logger := m.logger.WithComponent(store)
	s.subs = append(s.subs, subscribe(logChange(logger)))

	if m.metrics != nil {
		s.subs = append(s.subs, subscribe(m.metrics.Observe(store)))
	}
}

// logChange returns an observer that logs every change at debug level and
// evictions at info level.
func logChange(logger *logging.Logger) func(history.Change) {
	return func(ch history.Change) {
		logger.WithFields(map[string]any{
			"index":  ch.Index,
			"length": ch.Length,
		}).Debug("%s: %s", ch.Kind, ch.Action)

		if ch.Discarded > 0 {
			logger.Debug("discarded %d redo entries", ch.Discarded)
		}
		if ch.Evicted > 0 {
			logger.Info("evicted %d oldest entries", ch.Evicted)
		}
	}
}

// Load replaces both histories with a freshly loaded document.
func (s *Session) Load(blocks []canvas.Block, tables []schema.Table) {
	s.Canvas.ClearTo(blocks)
	s.Schema.ClearTo(tables)
	s.logger.Info("loaded document with %d blocks and %d tables", len(blocks), len(tables))
}

// Flush applies pending debounced edits in both histories.
func (s *Session) Flush() {
	s.Canvas.Flush()
	s.Schema.Flush()
}

// Close stops both histories. Pending debounced edits are discarded.
func (s *Session) Close() {
	s.once.Do(func() {
		for _, sub := range s.subs {
			sub.Unsubscribe()
		}
		s.Canvas.Close()
		s.Schema.Close()
		s.logger.Debug("closed")
	})
}
