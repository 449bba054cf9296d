// Package progress consumes the video processing backend's push channel.
// One WebSocket per running job; inbound events are folded last-write-wins
// into a per-job status map until a terminal event arrives.
package progress

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// StageDone marks normal completion; StageFailed renders the failure
// overlay and, unlike done, does not evict the job's last-known state.
const (
	StageDone   = "done"
	StageFailed = "failed"
)

// Event is one inbound progress frame. The client never sends frames
// after connect.
type Event struct {
	VideoID string  `json:"video_id"`
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// Status is the folded progress state for one job.
type Status struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
	Failed  bool    `json:"failed"`
}

// Subscriber tracks one push channel per job id. Subscribing an already
// watched id is a no-op.
type Subscriber struct {
	baseURL    string
	dialer     *websocket.Dialer
	onTerminal func(jobID string)

	mu       sync.Mutex
	watching map[string]*websocket.Conn
	state    map[string]Status
}

// NewSubscriber creates a subscriber. onTerminal fires exactly once per
// job when it completes, so the caller can refetch the job list and pick
// up the done flag; it may be nil.
func NewSubscriber(baseURL string, onTerminal func(jobID string)) *Subscriber {
	return &Subscriber{
		baseURL:    baseURL,
		dialer:     websocket.DefaultDialer,
		onTerminal: onTerminal,
		watching:   make(map[string]*websocket.Conn),
		state:      make(map[string]Status),
	}
}

// Watch opens the push channel for a job. Idempotent per job id.
func (s *Subscriber) Watch(ctx context.Context, jobID string) error {
	s.mu.Lock()
	if _, ok := s.watching[jobID]; ok {
		s.mu.Unlock()
		return nil
	}
	// Reserve the slot before dialing so a concurrent Watch for the same
	// id cannot open a second channel.
	s.watching[jobID] = nil
	s.mu.Unlock()

	url := fmt.Sprintf("%s/ws/progress?video_id=%s", s.baseURL, jobID)
	conn, _, err := s.dialer.DialContext(ctx, url, nil)
	if err != nil {
		s.release(jobID)
		return fmt.Errorf("dial progress channel for %s: %w", jobID, err)
	}

	s.mu.Lock()
	s.watching[jobID] = conn
	s.mu.Unlock()

	go s.consume(jobID, conn)
	return nil
}

func (s *Subscriber) consume(jobID string, conn *websocket.Conn) {
	defer conn.Close()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			// Transport close is logged, never retried; the last folded
			// state stays visible.
			log.Warn().Err(err).Str("job_id", jobID).Msg("progress channel closed")
			s.release(jobID)
			return
		}

		if ev.Stage == StageFailed {
			s.fold(jobID, Status{Stage: ev.Stage, Percent: ev.Percent, Message: ev.Message, Failed: true})
			continue
		}

		if ev.Percent >= 100 || ev.Stage == StageDone {
			s.mu.Lock()
			delete(s.state, jobID)
			delete(s.watching, jobID)
			s.mu.Unlock()

			if s.onTerminal != nil {
				s.onTerminal(jobID)
			}
			return
		}

		s.fold(jobID, Status{Stage: ev.Stage, Percent: ev.Percent, Message: ev.Message})
	}
}

func (s *Subscriber) fold(jobID string, status Status) {
	s.mu.Lock()
	s.state[jobID] = status
	s.mu.Unlock()
}

func (s *Subscriber) release(jobID string) {
	s.mu.Lock()
	delete(s.watching, jobID)
	s.mu.Unlock()
}

// Snapshot returns the folded state for one job.
func (s *Subscriber) Snapshot(jobID string) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.state[jobID]
	return status, ok
}

// Snapshots returns a copy of all folded job states.
func (s *Subscriber) Snapshots() map[string]Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Status, len(s.state))
	for id, status := range s.state {
		out[id] = status
	}
	return out
}

// Close tears down every open channel. Used at shutdown.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, conn := range s.watching {
		if conn != nil {
			conn.Close()
		}
		delete(s.watching, id)
	}
}
