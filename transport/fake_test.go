package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/vicholz/chirp-web/radioerr"
)

func TestFakeQueueIsImmediatelyAvailable(t *testing.T) {
	f := NewFake()
	f.Queue([]byte{0x01, 0x02, 0x03})
	got, err := f.ReadExact(3, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	if string(got) != "\x01\x02\x03" {
		t.Fatalf("unexpected bytes: % x", got)
	}
}

func TestFakeQueueAfterGatesAvailability(t *testing.T) {
	f := NewFake()
	f.QueueAfter([]byte{0xAA}, 30*time.Millisecond)

	if got, _ := f.ReadAvailable(1, 5*time.Millisecond); len(got) != 0 {
		t.Fatalf("expected nothing available before the delay elapses, got % x", got)
	}
	got, err := f.ReadExact(1, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	if got[0] != 0xAA {
		t.Fatalf("unexpected byte: 0x%02x", got[0])
	}
}

// TestFakeReadExactTimesOut grounds the ByteTransport contract that
// ReadExact returns a Timeout CloneError when the deadline passes without
// enough bytes arriving.
func TestFakeReadExactTimesOut(t *testing.T) {
	f := NewFake()
	_, err := f.ReadExact(4, 5*time.Millisecond)
	if err == nil {
		t.Fatalf("expected a timeout error")
	}
	var ce *radioerr.CloneError
	if !errors.As(err, &ce) || ce.Kind != radioerr.Timeout {
		t.Fatalf("expected a Timeout CloneError, got %v", err)
	}
}

// TestFakeReadAvailableNeverErrorsOnTimeout grounds the documented
// difference from ReadExact: a bare timeout with nothing queued returns a
// nil error and a nil/empty slice, never a Timeout CloneError.
func TestFakeReadAvailableNeverErrorsOnTimeout(t *testing.T) {
	f := NewFake()
	got, err := f.ReadAvailable(16, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected nothing available, got % x", got)
	}
}

func TestFakeReadUntilSuffix(t *testing.T) {
	f := NewFake()
	f.Queue([]byte{0x01, 0x02, 0x03, 0x04})
	got, err := f.ReadUntil([]byte{0x03, 0x04}, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("ReadUntil: %v", err)
	}
	if string(got) != "\x01\x02\x03\x04" {
		t.Fatalf("unexpected bytes: % x", got)
	}
}

func TestFakeWriteAfterCloseFails(t *testing.T) {
	f := NewFake()
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	err := f.Write([]byte{0x01})
	var ce *radioerr.CloneError
	if !errors.As(err, &ce) || ce.Kind != radioerr.PortUnavailable {
		t.Fatalf("expected a PortUnavailable CloneError, got %v", err)
	}
}

// TestFakeMinWriteGap grounds the transport double's role in verifying an
// engine honors a descriptor's minimum inter-write delay.
func TestFakeMinWriteGap(t *testing.T) {
	f := NewFake()
	if gap := f.MinWriteGap(); gap != -1 {
		t.Fatalf("expected -1 with fewer than two writes, got %v", gap)
	}
	f.Write([]byte{0x01})
	time.Sleep(5 * time.Millisecond)
	f.Write([]byte{0x02})
	time.Sleep(15 * time.Millisecond)
	f.Write([]byte{0x03})

	gap := f.MinWriteGap()
	if gap <= 0 || gap > 10*time.Millisecond {
		t.Fatalf("expected the smaller ~5ms gap to win, got %v", gap)
	}
}

func TestFakeSignals(t *testing.T) {
	f := NewFake()
	if err := f.SetSignals(true, false); err != nil {
		t.Fatalf("SetSignals: %v", err)
	}
	dtr, rts := f.Signals()
	if !dtr || rts {
		t.Fatalf("expected dtr=true rts=false, got dtr=%v rts=%v", dtr, rts)
	}
}
