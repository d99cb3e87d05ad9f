// Package transport defines the duplex byte-stream contract the clone
// engine drives, and provides a real serial implementation plus a
// scripted fake for tests.
package transport

import (
	"time"
)

// Parity mirrors the handful of settings the clone protocols ever use.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// Settings configures a ByteTransport at open time. Every clone protocol in
// this system uses 8 data bits, 1 stop bit, no parity, no flow control;
// only Baud, DTR and RTS vary per model.
type Settings struct {
	Baud     int
	DataBits int
	StopBits int
	Parity   Parity
	DTR      bool
	RTS      bool
}

// DefaultSettings returns the standard 8-N-1 serial defaults, with the given baud.
func DefaultSettings(baud int) Settings {
	return Settings{
		Baud:     baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   ParityNone,
		DTR:      true,
		RTS:      true,
	}
}

// ByteTransport is a duplex byte stream with blocking reads bounded by a
// deadline, a non-blocking write, and out-of-band control signals. It is
// bit-exact: no line discipline, no buffering guarantees beyond what is
// documented per method.
type ByteTransport interface {
	// Write returns once buf has been accepted by the OS. The transport
	// never reorders writes relative to one another.
	Write(buf []byte) error

	// ReadExact returns exactly n bytes, or a Timeout error if deadline
	// passes first. On timeout the partial prefix already received is
	// discarded — callers must treat the step as failed, not retry it
	// with knowledge of the partial read.
	ReadExact(n int, deadline time.Duration) ([]byte, error)

	// ReadAvailable returns up to max bytes, possibly zero, and never
	// fails on a bare timeout (it returns whatever arrived, which may be
	// nothing).
	ReadAvailable(max int, deadline time.Duration) ([]byte, error)

	// ReadUntil returns all bytes received up to and including the first
	// occurrence of suffix, or a Timeout error if deadline passes first.
	ReadUntil(suffix []byte, deadline time.Duration) ([]byte, error)

	// SetSignals asserts or clears DTR/RTS.
	SetSignals(dtr, rts bool) error

	// Close releases the underlying port.
	Close() error
}

// Opener opens a ByteTransport given settings; real ports and fakes both
// implement it so the engine can be handed either uniformly.
type Opener interface {
	Open(settings Settings) (ByteTransport, error)
}
