package coordinator

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is the hard upper bound on how long a key may stay
// in-flight when neither the success nor the error path settles it.
const DefaultTimeout = 10 * time.Second

type key struct {
	entityID string
	action   string
}

// Entry identifies one in-flight action for UI state snapshots.
type Entry struct {
	EntityID string `json:"entity_id"`
	Action   string `json:"action"`
}

type operation struct {
	timer *time.Timer
}

// Coordinator tracks which (entity, action) pairs currently have an
// asynchronous mutation in flight, so per-row controls can disable
// themselves independently. Every Begin arms a safety timer; Settle from
// the success path, the error path and the timer all race, and whichever
// fires first clears the flag. The flag can therefore never stay true
// past the timeout.
type Coordinator struct {
	mu       sync.Mutex
	inflight map[key]*operation
	timeout  time.Duration
	logger   *zap.Logger
}

func New(timeout time.Duration, logger *zap.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Coordinator{
		inflight: make(map[key]*operation),
		timeout:  timeout,
		logger:   logger,
	}
}

// Begin marks the pair in flight. A second Begin on the same key before
// the first settles replaces it: last caller observed wins, and the
// superseded safety timer is stopped so it cannot clear the new flag.
func (c *Coordinator) Begin(entityID, action string) {
	k := key{entityID: entityID, action: action}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.inflight[k]; ok {
		prev.timer.Stop()
	}

	op := &operation{}
	op.timer = time.AfterFunc(c.timeout, func() {
		c.expire(k, op)
	})
	c.inflight[k] = op
}

// Settle clears the flag. Safe to call any number of times per Begin;
// only the first call for a given operation has an effect.
func (c *Coordinator) Settle(entityID, action string) {
	k := key{entityID: entityID, action: action}

	c.mu.Lock()
	defer c.mu.Unlock()

	if op, ok := c.inflight[k]; ok {
		op.timer.Stop()
		delete(c.inflight, k)
	}
}

// expire is the safety-timer path. The operation identity check keeps a
// stale timer from clearing a newer Begin on the same key.
func (c *Coordinator) expire(k key, op *operation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.inflight[k]
	if !ok || current != op {
		return
	}
	delete(c.inflight, k)
	if c.logger != nil {
		c.logger.Warn("in-flight action settled by safety timeout",
			zap.String("entity_id", k.entityID),
			zap.String("action", k.action),
			zap.Duration("timeout", c.timeout),
		)
	}
}

// InFlight reports whether the pair has an unsettled operation.
func (c *Coordinator) InFlight(entityID, action string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[key{entityID: entityID, action: action}]
	return ok
}

// Snapshot lists all in-flight pairs.
func (c *Coordinator) Snapshot() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]Entry, 0, len(c.inflight))
	for k := range c.inflight {
		entries = append(entries, Entry{EntityID: k.entityID, Action: k.action})
	}
	return entries
}

// Run wraps fn in a Begin/Settle pair. The deferred Settle covers both
// the success and the error return; the safety timer covers fn never
// returning control at all.
func (c *Coordinator) Run(entityID, action string, fn func() error) error {
	c.Begin(entityID, action)
	defer c.Settle(entityID, action)
	return fn()
}
