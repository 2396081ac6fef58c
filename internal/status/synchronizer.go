package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tmaxmax/go-sse"
	"motionberry-cli/internal/logging"
	"motionberry-cli/pkg/models"
)

// DefaultRetry matches the reconnection delay browsers use for EventSource.
const DefaultRetry = 3 * time.Second

// ErrAlreadyRunning is returned when Run is called on a synchronizer that
// has already been started. A synchronizer owns one connection for its
// whole lifetime.
var ErrAlreadyRunning = errors.New("status synchronizer already started")

// Source builds the status push stream request and the HTTP client that
// carries it. The client must not impose an overall request timeout.
type Source interface {
	StreamRequest(ctx context.Context, lastEventID string) (*http.Request, error)
	StreamClient() *http.Client
}

// Update is published after each applied status message.
type Update struct {
	Status   models.Status
	Applied  []Category
	Snapshot Snapshot
	At       time.Time
}

type Option func(*Synchronizer)

func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) { s.logger = logging.OrDiscard(l) }
}

// WithRetry overrides the constant reconnect delay used until the server
// sends a retry field of its own.
func WithRetry(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.retry = d
		}
	}
}

// WithBuffer sets how many updates may wait for a slow reader before the
// oldest is dropped.
func WithBuffer(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// Synchronizer subscribes to the status push stream and mirrors every
// message onto a Board. Messages are fire-and-forget: there is no
// acknowledgement, and a reader that falls behind only sees the latest
// updates.
type Synchronizer struct {
	source Source
	board  *Board
	logger *slog.Logger
	retry  time.Duration
	buffer int

	updates   chan Update
	started   atomic.Bool
	connected atomic.Bool
	received  atomic.Uint64
	dropped   atomic.Uint64
	mu        sync.Mutex
	lastErr   error
}

func NewSynchronizer(source Source, board *Board, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		source: source,
		board:  board,
		logger: logging.OrDiscard(nil),
		retry:  DefaultRetry,
		buffer: 16,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.updates = make(chan Update, s.buffer)
	return s
}

// Updates delivers applied snapshots. It is closed when Run returns.
func (s *Synchronizer) Updates() <-chan Update {
	return s.updates
}

func (s *Synchronizer) Board() *Board { return s.board }

func (s *Synchronizer) Connected() bool { return s.connected.Load() }

// Received counts status messages applied since start.
func (s *Synchronizer) Received() uint64 { return s.received.Load() }

// Dropped counts updates discarded because no reader kept up.
func (s *Synchronizer) Dropped() uint64 { return s.dropped.Load() }

// LastError returns the most recent stream error, if any.
func (s *Synchronizer) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Run holds the stream open until ctx is cancelled, reconnecting after every
// failure with a constant delay. It returns nil on cancellation.
func (s *Synchronizer) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.updates)

	var lastID string
	for {
		err := s.connect(ctx, &lastID)
		s.connected.Store(false)
		if ctx.Err() != nil {
			s.logger.Debug("status stream closed")
			return nil
		}

		s.setErr(err)
		s.logger.Error("Error connecting to the status stream.", "error", err, "retry_in", s.retry)

		timer := time.NewTimer(s.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// connect runs one go-sse connection. The library reconnects on its own,
// honouring retry fields and replaying Last-Event-ID; connect only returns
// when ctx ends or the library gives up.
func (s *Synchronizer) connect(ctx context.Context, lastID *string) error {
	req, err := s.source.StreamRequest(ctx, *lastID)
	if err != nil {
		return err
	}

	c := &sse.Client{
		HTTPClient: s.source.StreamClient(),
		Backoff: sse.Backoff{
			InitialInterval: s.retry,
			Multiplier:      1,
			Jitter:          -1,
		},
		ResponseValidator: func(resp *http.Response) error {
			if err := sse.DefaultValidator(resp); err != nil {
				return err
			}
			s.connected.Store(true)
			s.logger.Info("status stream connected")
			return nil
		},
		OnRetry: func(err error, d time.Duration) {
			s.connected.Store(false)
			s.setErr(err)
			s.logger.Error("Error connecting to the status stream.", "error", err, "retry_in", d)
		},
	}

	conn := c.NewConnection(req)
	remove := conn.SubscribeMessages(func(ev sse.Event) {
		*lastID = ev.LastEventID
		if err := s.process([]byte(ev.Data)); err != nil {
			s.logger.Warn("skipping status message", "error", err)
		}
	})
	defer remove()

	err = conn.Connect()
	if err == nil {
		err = errors.New("status stream closed")
	}
	return err
}

func (s *Synchronizer) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// process decodes one status payload, applies it to the board and publishes
// the result. Only the goroutine inside Run calls it, so updates is still open.
func (s *Synchronizer) process(data []byte) error {
	var st models.Status
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode status %q: %w", truncate(data, 80), err)
	}

	applied := Apply(s.board, st)
	s.received.Add(1)
	s.logger.Debug("status applied", "categories", applied)

	s.publish(Update{
		Status:   st,
		Applied:  applied,
		Snapshot: s.board.Snapshot(),
		At:       time.Now(),
	})
	return nil
}

// publish never blocks; when the buffer is full the oldest update is dropped
// so the newest state always gets through.
func (s *Synchronizer) publish(u Update) {
	select {
	case s.updates <- u:
		return
	default:
	}
	select {
	case <-s.updates:
		s.dropped.Add(1)
	default:
	}
	select {
	case s.updates <- u:
	default:
		s.dropped.Add(1)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
