package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/metrics"
	"github.com/gorilla/websocket"
)

// Listener streams chain events and fans them out to registered channels.
// It prefers a websocket subscription; when the socket cannot be dialed or
// drops, it falls back to JSON-RPC polling until the socket comes back.
// Every registered channel receives every event; consumers filter by type.
type Listener struct {
	wsURL        string
	httpURL      string
	pollInterval time.Duration
	batchSize    int

	httpClient *http.Client

	mu       sync.Mutex
	handlers map[string]chan Event

	resumeMs     atomic.Int64
	lastPolledMs atomic.Int64
}

func NewListener(wsURL, httpURL string, pollInterval time.Duration, batchSize int) *Listener {
	return &Listener{
		wsURL:        wsURL,
		httpURL:      httpURL,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		handlers:     make(map[string]chan Event),
	}
}

// Register adds a named consumer and returns its inbound channel. Must be
// called before Run.
func (l *Listener) Register(name string) <-chan Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan Event, 256)
	l.handlers[name] = ch
	return ch
}

// SetResumePoint skips events at or before the given chain timestamp,
// typically read from indexer_progress at startup. The cutoff is fixed:
// live events past it are never filtered, because all events of one
// transaction share a timestamp and a moving cutoff would drop every
// sibling after the first. Duplicates are the projection layer's problem;
// delivery here is at-least-once.
func (l *Listener) SetResumePoint(tsMs int64) {
	l.resumeMs.Store(tsMs)
	l.lastPolledMs.Store(tsMs)
}

// Run streams events until the context is cancelled, then closes every
// registered channel.
func (l *Listener) Run(ctx context.Context) {
	defer l.closeAll()

	for {
		if ctx.Err() != nil {
			return
		}
		if err := l.runWebsocket(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("websocket subscription failed, falling back to polling", "error", err)
			l.pollUntil(ctx, 5*time.Minute)
		}
	}
}

func (l *Listener) closeAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.handlers {
		close(ch)
	}
	l.handlers = make(map[string]chan Event)
}

func (l *Listener) dispatch(ev Event) {
	if ev.TimestampMs > 0 && ev.TimestampMs <= l.resumeMs.Load() {
		return
	}
	metrics.EventsReceived.Inc()

	l.mu.Lock()
	defer l.mu.Unlock()
	for name, ch := range l.handlers {
		select {
		case ch <- ev:
		default:
			slog.Warn("handler channel full, dropping event", "worker", name, "event_id", ev.EventID)
		}
	}
}

type subscribeMessage struct {
	Params struct {
		Result rpcEvent `json:"result"`
	} `json:"params"`
}

func (l *Listener) runWebsocket(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, l.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", l.wsURL, err)
	}
	defer conn.Close()

	sub := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "mysx_subscribeEvent",
		"params":  []any{map[string]any{"All": []any{}}},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	slog.Info("subscribed to chain events", "url", l.wsURL)

	// Unblock ReadMessage on shutdown.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		var m subscribeMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			slog.Debug("unparseable subscription message", "error", err)
			continue
		}
		if m.Params.Result.Type == "" {
			// Subscription ack or keepalive.
			continue
		}
		l.dispatch(m.Params.Result.toEvent())
	}
}

// pollUntil runs the polling fallback for at most the given duration, then
// returns so the caller can retry the websocket.
func (l *Listener) pollUntil(ctx context.Context, retryAfter time.Duration) {
	deadline := time.Now().Add(retryAfter)
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.pollOnce(ctx); err != nil {
				slog.Error("event poll failed", "error", err)
			}
			if time.Now().After(deadline) {
				return
			}
		}
	}
}

type queryEventsResult struct {
	Result struct {
		Data []rpcEvent `json:"data"`
	} `json:"result"`
}

func (l *Listener) pollOnce(ctx context.Context) error {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "mysx_queryEvents",
		"params":  []any{map[string]any{"All": []any{}}, nil, l.batchSize, true},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.httpURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("queryEvents: unexpected status %d", resp.StatusCode)
	}

	var out queryEventsResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}

	// queryEvents re-returns the same tail on every poll, so the fallback
	// keeps its own high-water mark. Siblings with equal timestamps arrive
	// in one batch and all clear the floor together.
	floor := l.lastPolledMs.Load()
	maxTs := floor
	for i := range out.Result.Data {
		ev := out.Result.Data[i].toEvent()
		if ev.TimestampMs > 0 && ev.TimestampMs <= floor {
			continue
		}
		if ev.TimestampMs > maxTs {
			maxTs = ev.TimestampMs
		}
		l.dispatch(ev)
	}
	l.lastPolledMs.Store(maxTs)
	return nil
}
