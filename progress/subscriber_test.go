package progress_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fendriknuruljadid/astrovia-app/progress"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// progressServer is a fake processing backend: it records connections per
// video id and pushes whatever events the test scripts.
type progressServer struct {
	*httptest.Server
	upgrader websocket.Upgrader
	connects atomic.Int64
	events   chan progress.Event
	closed   chan struct{}
}

func newProgressServer(t *testing.T) *progressServer {
	t.Helper()
	ps := &progressServer{
		events: make(chan progress.Event, 16),
		closed: make(chan struct{}),
	}

	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ws/progress", r.URL.Path)
		require.NotEmpty(t, r.URL.Query().Get("video_id"))

		conn, err := ps.upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		ps.connects.Add(1)

		defer conn.Close()
		for {
			select {
			case ev := <-ps.events:
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
			case <-ps.closed:
				return
			}
		}
	}))
	t.Cleanup(ps.Server.Close)
	t.Cleanup(func() { close(ps.closed) })
	return ps
}

func (ps *progressServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ps.URL, "http")
}

func TestProgressFoldsThenEvictsOnDone(t *testing.T) {
	ps := newProgressServer(t)

	var refetches atomic.Int64
	sub := progress.NewSubscriber(ps.wsURL(), func(jobID string) {
		require.Equal(t, "job-1", jobID)
		refetches.Add(1)
	})
	t.Cleanup(sub.Close)

	require.NoError(t, sub.Watch(context.Background(), "job-1"))

	ps.events <- progress.Event{VideoID: "job-1", Stage: "rendering", Percent: 45}
	require.Eventually(t, func() bool {
		status, ok := sub.Snapshot("job-1")
		return ok && status.Percent == 45 && status.Stage == "rendering"
	}, time.Second, 5*time.Millisecond)

	ps.events <- progress.Event{VideoID: "job-1", Stage: "done", Percent: 100}
	require.Eventually(t, func() bool {
		_, ok := sub.Snapshot("job-1")
		return !ok && refetches.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// The job list is refetched exactly once.
	require.EqualValues(t, 1, refetches.Load())
}

func TestProgressPercent100IsTerminalWithoutDoneStage(t *testing.T) {
	ps := newProgressServer(t)

	var refetches atomic.Int64
	sub := progress.NewSubscriber(ps.wsURL(), func(string) { refetches.Add(1) })
	t.Cleanup(sub.Close)

	require.NoError(t, sub.Watch(context.Background(), "job-2"))
	ps.events <- progress.Event{VideoID: "job-2", Stage: "rendering", Percent: 100}

	require.Eventually(t, func() bool { return refetches.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestProgressWatchIsIdempotent(t *testing.T) {
	ps := newProgressServer(t)

	sub := progress.NewSubscriber(ps.wsURL(), nil)
	t.Cleanup(sub.Close)

	require.NoError(t, sub.Watch(context.Background(), "job-3"))
	require.NoError(t, sub.Watch(context.Background(), "job-3"))
	require.NoError(t, sub.Watch(context.Background(), "job-3"))

	// Give any (incorrect) second dial a chance to land.
	time.Sleep(50 * time.Millisecond)
	require.EqualValues(t, 1, ps.connects.Load())
}

func TestProgressFailedStageIsSticky(t *testing.T) {
	ps := newProgressServer(t)

	var refetches atomic.Int64
	sub := progress.NewSubscriber(ps.wsURL(), func(string) { refetches.Add(1) })
	t.Cleanup(sub.Close)

	require.NoError(t, sub.Watch(context.Background(), "job-4"))
	ps.events <- progress.Event{VideoID: "job-4", Stage: "failed", Percent: 60, Message: "render error"}

	require.Eventually(t, func() bool {
		status, ok := sub.Snapshot("job-4")
		return ok && status.Failed
	}, time.Second, 5*time.Millisecond)

	// Failure is not auto-completed: no eviction, no job-list refetch.
	status, ok := sub.Snapshot("job-4")
	require.True(t, ok)
	require.Equal(t, "render error", status.Message)
	require.Zero(t, refetches.Load())
}

func TestProgressTransportCloseKeepsLastState(t *testing.T) {
	ps := newProgressServer(t)

	sub := progress.NewSubscriber(ps.wsURL(), nil)
	t.Cleanup(sub.Close)

	require.NoError(t, sub.Watch(context.Background(), "job-5"))
	ps.events <- progress.Event{VideoID: "job-5", Stage: "downloading", Percent: 10}

	require.Eventually(t, func() bool {
		_, ok := sub.Snapshot("job-5")
		return ok
	}, time.Second, 5*time.Millisecond)

	ps.CloseClientConnections()

	// The watch slot is released so a new Watch may dial again, but the
	// last folded state stays visible.
	require.Eventually(t, func() bool {
		err := sub.Watch(context.Background(), "job-5")
		return err == nil && ps.connects.Load() == 2
	}, time.Second, 10*time.Millisecond)

	status, ok := sub.Snapshot("job-5")
	require.True(t, ok)
	require.Equal(t, "downloading", status.Stage)
	require.EqualValues(t, 10, status.Percent)
}
