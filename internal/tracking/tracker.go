package tracking

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultNoiseThreshold filters out section visits too short to mean
// anything: a dwell below it is never flushed.
const DefaultNoiseThreshold = 3 * time.Second

// OverviewSection is the section stamped on the open-event every session
// starts with.
const OverviewSection = "overview"

// Sink receives flushed view events. The API client posting to
// POST /documents/{id}/views is the production implementation.
type Sink interface {
	RecordView(ctx context.Context, documentID, section string, timeSpentSeconds int) error
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Session tracks how one viewer consumes one open document. It keeps a
// monotonic start-timestamp for the current section and flushes one event
// per section visit that outlives the noise threshold. Flush failures are
// logged and swallowed: analytics never blocks the primary action.
type Session struct {
	documentID string
	sink       Sink
	clock      Clock
	logger     *zap.Logger
	noise      time.Duration

	mu           sync.Mutex
	section      string
	sectionStart time.Time
	closed       bool
}

type Option func(*Session)

func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithNoiseThreshold(d time.Duration) Option {
	return func(s *Session) { s.noise = d }
}

// Open starts a session and immediately flushes a minimal overview event
// with one second of dwell, so a document opened and instantly closed
// still registers as viewed.
func Open(ctx context.Context, documentID string, sink Sink, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		documentID: documentID,
		sink:       sink,
		clock:      systemClock{},
		logger:     logger,
		noise:      DefaultNoiseThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.section = OverviewSection
	s.sectionStart = s.clock.Now()
	s.flush(ctx, OverviewSection, 1)
	return s
}

// EnterSection records the switch to a new section. The dwell on the
// previous section is flushed, tagged with that previous section, if it
// exceeded the noise threshold; then the section clock restarts.
func (s *Session) EnterSection(ctx context.Context, section string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	now := s.clock.Now()
	elapsed := now.Sub(s.sectionStart)
	if elapsed > s.noise {
		s.flush(ctx, s.section, int(elapsed.Seconds()))
	}
	s.section = section
	s.sectionStart = now
}

// Close performs the final flush for whatever section was active, under
// the same elapsed-time rule, and ends the session. Calling Close twice
// is a no-op.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	elapsed := s.clock.Now().Sub(s.sectionStart)
	if elapsed > s.noise {
		s.flush(ctx, s.section, int(elapsed.Seconds()))
	}
}

func (s *Session) flush(ctx context.Context, section string, seconds int) {
	if err := s.sink.RecordView(ctx, s.documentID, section, seconds); err != nil {
		s.logger.Warn("view event flush failed",
			zap.String("document_id", s.documentID),
			zap.String("section", section),
			zap.Error(err),
		)
	}
}
