package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"pkt.systems/vtscope/core"
	"pkt.systems/vtscope/internal/logx"
	"pkt.systems/vtscope/schema"
)

const writeTimeout = 10 * time.Second

// Server serves the viewer UI and the /events stream.
type Server struct {
	cfg Config
	hub *core.Hub
}

// NewServer constructs an HTTP server around the session hub.
func NewServer(cfg Config, hub *core.Hub) *Server {
	if cfg.BacklogChunkSize <= 0 {
		cfg.BacklogChunkSize = 100
	}
	return &Server{cfg: cfg, hub: hub}
}

// Handler returns an http.Handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))
	mux.HandleFunc("/events", s.handleEvents)
	return withRequestLogging(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	serveAsset(w, r, "index.html")
}

// handleEvents upgrades to a websocket, replays the backlog in bounded
// chunks, then streams live batches. Each message is one JSON array of
// events; the order across all messages is exactly publish order.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	log := logx.WithViewer(r.Context(), clientIP(r))
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	sub, backlog, err := s.hub.Subscribe()
	if err != nil {
		conn.Close(websocket.StatusNormalClosure, "session ended")
		return
	}
	defer s.hub.Unsubscribe(sub)

	// No client messages are expected; CloseRead surfaces disconnects
	// through ctx so a dead viewer does not linger as a subscriber.
	ctx := conn.CloseRead(r.Context())
	log.Info("viewer connected", "backlog_batches", len(backlog))

	for _, chunk := range chunkEvents(flatten(backlog), s.cfg.BacklogChunkSize) {
		if err := writeBatch(ctx, conn, chunk); err != nil {
			log.Debug("viewer backlog write failed", "error", err)
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("viewer disconnected")
			return
		case batch, ok := <-sub.C():
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "session ended")
				log.Info("viewer stream ended")
				return
			}
			if err := writeBatch(ctx, conn, batch); err != nil {
				log.Debug("viewer write failed", "error", err)
				return
			}
		}
	}
}

func writeBatch(ctx context.Context, conn *websocket.Conn, batch []schema.Event) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

func flatten(batches [][]schema.Event) []schema.Event {
	total := 0
	for _, batch := range batches {
		total += len(batch)
	}
	events := make([]schema.Event, 0, total)
	for _, batch := range batches {
		events = append(events, batch...)
	}
	return events
}

func chunkEvents(events []schema.Event, size int) [][]schema.Event {
	if len(events) == 0 {
		return nil
	}
	chunks := make([][]schema.Event, 0, (len(events)+size-1)/size)
	for start := 0; start < len(events); start += size {
		end := start + size
		if end > len(events) {
			end = len(events)
		}
		chunks = append(chunks, events[start:end])
	}
	return chunks
}
