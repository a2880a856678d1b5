package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// progressEvent is one stage transition pushed to a connected run-progress
// stream client. It is a best-effort notification, never part of the §6
// output contract: a client that never connects, or disconnects mid-run,
// loses nothing a GET /runs/:id poll wouldn't eventually show it.
type progressEvent struct {
	Stage string    `json:"stage"`
	At    time.Time `json:"at"`
}

// progressBroadcaster fans a run's stage events out to zero or more
// connected stream subscribers. An event for a subscriber that isn't keeping
// up is dropped for that subscriber rather than allowed to block the run; the
// subscriber itself stays subscribed.
type progressBroadcaster struct {
	mu   sync.Mutex
	subs map[string]map[chan progressEvent]struct{}
}

func newProgressBroadcaster() *progressBroadcaster {
	return &progressBroadcaster{subs: make(map[string]map[chan progressEvent]struct{})}
}

func (b *progressBroadcaster) subscribe(runID string) chan progressEvent {
	ch := make(chan progressEvent, 16)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[runID] == nil {
		b.subs[runID] = make(map[chan progressEvent]struct{})
	}
	b.subs[runID][ch] = struct{}{}
	return ch
}

func (b *progressBroadcaster) unsubscribe(runID string, ch chan progressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[runID]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(b.subs, runID)
		}
	}
	close(ch)
}

// publish delivers a run's stage event to every connected subscriber,
// dropping it for any subscriber whose buffer is full.
func (b *progressBroadcaster) publish(runID, stage string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	evt := progressEvent{Stage: stage, At: time.Now().UTC()}
	for ch := range b.subs[runID] {
		select {
		case ch <- evt:
		default:
		}
	}
}

var streamUpgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// handleStreamRun upgrades to a websocket and relays run_chronology's stage
// progress until the run reaches a terminal status or the client
// disconnects. It never reports an error to the HTTP caller after upgrade:
// a failed push just ends the stream.
func (s *Server) handleStreamRun(c *gin.Context) {
	runID := c.Param("id")

	conn, err := streamUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).WithField("run_id", runID).Warn("failed to upgrade progress stream")
		return
	}
	defer conn.Close()

	ch := s.progress.subscribe(runID)
	defer s.progress.unsubscribe(runID, ch)

	for evt := range ch {
		if err := conn.WriteJSON(evt); err != nil {
			s.log.WithError(err).WithField("run_id", runID).Debug("progress stream client disconnected")
			return
		}
		if evt.Stage == "completed" {
			return
		}
	}
}
