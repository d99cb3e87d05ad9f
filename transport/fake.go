package transport

import (
	"bytes"
	"sync"
	"time"

	"github.com/vicholz/chirp-web/radioerr"
)

// chunk is a scripted response, held back until availAt so tests can
// script slow radios without real sleeps dominating the wall clock.
type chunk struct {
	data      []byte
	availAt   time.Time
}

// writeRecord captures one Write call for post-hoc timing assertions.
type writeRecord struct {
	data []byte
	at   time.Time
}

// Fake is a scripted ByteTransport double used by engine tests. It replaces
// a real serial port: tests enqueue the bytes a radio would reply with, and
// later inspect what the engine wrote and when, to verify inter-byte and
// post-ACK delays are honored.
type Fake struct {
	mu       sync.Mutex
	pending  []chunk
	buf      []byte
	writes   []writeRecord
	dtr, rts bool
	closed   bool
	pollStep time.Duration
}

// NewFake returns an empty Fake transport.
func NewFake() *Fake {
	return &Fake{pollStep: time.Millisecond}
}

// Queue makes data available for the next read immediately.
func (f *Fake) Queue(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, chunk{data: append([]byte(nil), data...), availAt: time.Time{}})
}

// QueueAfter makes data available only after delay has elapsed since this call.
func (f *Fake) QueueAfter(data []byte, delay time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, chunk{data: append([]byte(nil), data...), availAt: time.Now().Add(delay)})
}

func (f *Fake) drainLocked() {
	now := time.Now()
	kept := f.pending[:0]
	for _, c := range f.pending {
		if c.availAt.IsZero() || !c.availAt.After(now) {
			f.buf = append(f.buf, c.data...)
		} else {
			kept = append(kept, c)
		}
	}
	f.pending = kept
}

// Write records the bytes and their timestamp.
func (f *Fake) Write(buf []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return radioerr.New(radioerr.PortUnavailable, "write on closed fake transport")
	}
	cp := append([]byte(nil), buf...)
	f.writes = append(f.writes, writeRecord{data: cp, at: time.Now()})
	return nil
}

// ReadExact implements ByteTransport.
func (f *Fake) ReadExact(n int, deadline time.Duration) ([]byte, error) {
	deadlineAt := time.Now().Add(deadline)
	for {
		f.mu.Lock()
		f.drainLocked()
		if len(f.buf) >= n {
			out := append([]byte(nil), f.buf[:n]...)
			f.buf = f.buf[n:]
			f.mu.Unlock()
			return out, nil
		}
		if time.Now().After(deadlineAt) {
			f.buf = nil // the partial prefix is discarded on timeout
			f.mu.Unlock()
			return nil, radioerr.TimeoutErr("read_exact", 0, false)
		}
		f.mu.Unlock()
		time.Sleep(f.pollStep)
	}
}

// ReadAvailable implements ByteTransport. Per spec it never errors on a bare
// timeout: it simply returns whatever arrived, possibly nothing.
func (f *Fake) ReadAvailable(max int, deadline time.Duration) ([]byte, error) {
	deadlineAt := time.Now().Add(deadline)
	for {
		f.mu.Lock()
		f.drainLocked()
		if len(f.buf) > 0 {
			n := max
			if n > len(f.buf) {
				n = len(f.buf)
			}
			out := append([]byte(nil), f.buf[:n]...)
			f.buf = f.buf[n:]
			f.mu.Unlock()
			return out, nil
		}
		f.mu.Unlock()
		if time.Now().After(deadlineAt) {
			return nil, nil
		}
		time.Sleep(f.pollStep)
	}
}

// ReadUntil implements ByteTransport.
func (f *Fake) ReadUntil(suffix []byte, deadline time.Duration) ([]byte, error) {
	deadlineAt := time.Now().Add(deadline)
	var acc []byte
	for {
		f.mu.Lock()
		f.drainLocked()
		if len(f.buf) > 0 {
			acc = append(acc, f.buf...)
			f.buf = nil
		}
		f.mu.Unlock()
		if bytes.HasSuffix(acc, suffix) {
			return acc, nil
		}
		if time.Now().After(deadlineAt) {
			return nil, radioerr.TimeoutErr("read_until", 0, false)
		}
		time.Sleep(f.pollStep)
	}
}

// SetSignals implements ByteTransport.
func (f *Fake) SetSignals(dtr, rts bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dtr, f.rts = dtr, rts
	return nil
}

// Close implements ByteTransport.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Writes returns a copy of every Write call recorded so far, in order.
func (f *Fake) Writes() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	for i, w := range f.writes {
		out[i] = append([]byte(nil), w.data...)
	}
	return out
}

// Signals returns the last DTR/RTS state set on the fake.
func (f *Fake) Signals() (dtr, rts bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dtr, f.rts
}

// MinWriteGap returns the smallest gap between consecutive Write calls, or
// -1 if fewer than two writes were recorded. Tests use this to assert the
// engine honored a descriptor's inter-byte delay.
func (f *Fake) MinWriteGap() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) < 2 {
		return -1
	}
	min := f.writes[1].at.Sub(f.writes[0].at)
	for i := 2; i < len(f.writes); i++ {
		gap := f.writes[i].at.Sub(f.writes[i-1].at)
		if gap < min {
			min = gap
		}
	}
	return min
}
