// Package engine drives a protocol descriptor through handshake and block
// transfer against a transport.ByteTransport, producing or consuming a raw
// memory image.
package engine

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vicholz/chirp-web/descriptor"
	"github.com/vicholz/chirp-web/rlog"
	"github.com/vicholz/chirp-web/transport"
)

// ProgressEvent is emitted after each block transferred. The caller owns the
// channel it arrives on.
type ProgressEvent struct {
	Phase      string
	BytesDone  int64
	BytesTotal int64
	Percent    float64
}

// Config holds the engine-level defaults that apply across every protocol
// descriptor, as opposed to the per-model timeout/retry values that live on
// the descriptor itself. BlockRetries governs how many times a single block
// read is retried after a timeout, or a block write after a missing or
// negative ack, before the transfer fails.
// ProgressInterval throttles how often ProgressEvents are sent, since a
// small block size can otherwise flood the channel with one event per few
// milliseconds.
type Config struct {
	BlockRetries     int
	ProgressInterval time.Duration
}

// DefaultConfig returns the engine's baseline tuning: two retries per block
// and a progress event no more often than every 100ms.
func DefaultConfig() Config {
	return Config{
		BlockRetries:     2,
		ProgressInterval: 100 * time.Millisecond,
	}
}

// Session drives one clone-protocol conversation over a single transport.
// It is single-use: open a transport, run one Probe/Download/Upload, close
// the transport. Sessions are not shared across goroutines.
type Session struct {
	id uuid.UUID

	transport transport.ByteTransport
	protocol  *descriptor.Protocol
	model     descriptor.Model

	config   Config
	logger   rlog.Logger
	progress chan<- ProgressEvent
	metrics  *Metrics

	cancelled int32 // atomic bool

	lastProgress time.Time

	// header carries the post-handshake identification bytes retained as an
	// opaque blob. handshakeDone distinguishes "ran, no ident bytes" from
	// "hasn't run yet".
	header        []byte
	handshakeDone bool
}

// Option configures a Session at construction.
type Option func(*Session)

// WithLogger attaches a logger; the default is rlog.Noop.
func WithLogger(l rlog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithProgress attaches a send-only progress channel. Sends block, so the
// caller must keep it drained.
func WithProgress(ch chan<- ProgressEvent) Option {
	return func(s *Session) { s.progress = ch }
}

// WithMetrics attaches optional Prometheus counters. A nil Metrics (the
// default) makes every metric call a no-op.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithSessionID overrides the auto-generated correlation ID, e.g. to keep
// the same ID across a Probe followed by a Download on the same transport.
func WithSessionID(id uuid.UUID) Option {
	return func(s *Session) { s.id = id }
}

// WithConfig overrides the engine-level defaults from DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(s *Session) { s.config = cfg }
}

// NewSession builds a Session bound to t, driving protocol against model.
func NewSession(t transport.ByteTransport, protocol *descriptor.Protocol, model descriptor.Model, opts ...Option) *Session {
	s := &Session{
		id:        uuid.New(),
		transport: t,
		protocol:  protocol,
		model:     model,
		config:    DefaultConfig(),
		logger:    rlog.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session's correlation identifier, useful for tying log
// lines across concurrent sessions on different ports.
func (s *Session) ID() string { return s.id.String() }

// Header returns the identification bytes retained from the handshake, or
// nil if the handshake hasn't run yet.
func (s *Session) Header() []byte { return append([]byte(nil), s.header...) }

// Cancel requests cooperative cancellation. Safe to call from another
// goroutine; the engine observes it at the next block boundary.
func (s *Session) Cancel() { atomic.StoreInt32(&s.cancelled, 1) }

func (s *Session) isCancelled() bool { return atomic.LoadInt32(&s.cancelled) == 1 }

// emitProgress sends a ProgressEvent, throttled to at most one per
// config.ProgressInterval except for the final event of a transfer (done
// reaching total), which always goes through so callers see completion.
func (s *Session) emitProgress(phase string, done, total int64) {
	if s.progress == nil {
		return
	}
	now := time.Now()
	final := total > 0 && done >= total
	if !final && s.config.ProgressInterval > 0 && now.Sub(s.lastProgress) < s.config.ProgressInterval {
		return
	}
	s.lastProgress = now

	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total) * 100
	}
	s.progress <- ProgressEvent{Phase: phase, BytesDone: done, BytesTotal: total, Percent: pct}
}
