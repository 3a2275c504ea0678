package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type recordedView struct {
	DocumentID string
	Section    string
	Seconds    int
}

type fakeSink struct {
	views []recordedView
	err   error
}

func (f *fakeSink) RecordView(_ context.Context, documentID, section string, seconds int) error {
	if f.err != nil {
		return f.err
	}
	f.views = append(f.views, recordedView{DocumentID: documentID, Section: section, Seconds: seconds})
	return nil
}

func TestOpenFlushesOverviewImmediately(t *testing.T) {
	sink := &fakeSink{}
	clock := &fakeClock{now: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)}

	s := Open(context.Background(), "doc_1", sink, zap.NewNop(), WithClock(clock))
	require.Len(t, sink.views, 1)
	assert.Equal(t, recordedView{DocumentID: "doc_1", Section: "overview", Seconds: 1}, sink.views[0])

	// open then instant close: the overview event is all that registers
	s.Close(context.Background())
	assert.Len(t, sink.views, 1)
}

func TestSectionSwitchScenario(t *testing.T) {
	sink := &fakeSink{}
	clock := &fakeClock{now: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)}

	s := Open(context.Background(), "doc_1", sink, zap.NewNop(), WithClock(clock))

	// straight to details, 40s there, 10s on comments, then close
	s.EnterSection(context.Background(), "details")
	clock.Advance(40 * time.Second)
	s.EnterSection(context.Background(), "comments")
	clock.Advance(10 * time.Second)
	s.Close(context.Background())

	require.Len(t, sink.views, 3)
	assert.Equal(t, "overview", sink.views[0].Section)
	assert.Equal(t, 1, sink.views[0].Seconds)
	assert.Equal(t, "details", sink.views[1].Section)
	assert.Equal(t, 40, sink.views[1].Seconds)
	assert.Equal(t, "comments", sink.views[2].Section)
	assert.Equal(t, 10, sink.views[2].Seconds)

	total := 0
	for _, v := range sink.views {
		total += v.Seconds
	}
	assert.Equal(t, 51, total)
}

func TestNoiseThresholdSuppressesShortDwells(t *testing.T) {
	sink := &fakeSink{}
	clock := &fakeClock{now: time.Now()}

	s := Open(context.Background(), "doc_1", sink, zap.NewNop(), WithClock(clock))

	// rapid tab flipping below the threshold flushes nothing
	s.EnterSection(context.Background(), "details")
	clock.Advance(time.Second)
	s.EnterSection(context.Background(), "pricing")
	clock.Advance(2 * time.Second)
	s.Close(context.Background())

	assert.Len(t, sink.views, 1) // only the open event
}

func TestCloseIsIdempotent(t *testing.T) {
	sink := &fakeSink{}
	clock := &fakeClock{now: time.Now()}

	s := Open(context.Background(), "doc_1", sink, zap.NewNop(), WithClock(clock))
	clock.Advance(20 * time.Second)
	s.Close(context.Background())
	s.Close(context.Background())
	s.EnterSection(context.Background(), "details")

	assert.Len(t, sink.views, 2)
}

func TestFlushFailuresAreSwallowed(t *testing.T) {
	sink := &fakeSink{err: errors.New("network down")}
	clock := &fakeClock{now: time.Now()}

	// none of these panic or surface the sink error
	s := Open(context.Background(), "doc_1", sink, zap.NewNop(), WithClock(clock))
	clock.Advance(30 * time.Second)
	s.EnterSection(context.Background(), "details")
	s.Close(context.Background())
}

func TestHTTPSink(t *testing.T) {
	var got viewPayload
	var gotPath, gotSession string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSession = r.Header.Get("X-Viewer-Session")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, "", "sess-abc", time.Second)
	err := sink.RecordView(context.Background(), "doc_42", "pricing", 17)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/documents/doc_42/views", gotPath)
	assert.Equal(t, "sess-abc", gotSession)
	assert.Equal(t, viewPayload{TimeSpent: 17, Section: "pricing"}, got)
}

func TestHTTPSinkRejectsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, "", "", time.Second)
	assert.Error(t, sink.RecordView(context.Background(), "doc_1", "", 1))
}
