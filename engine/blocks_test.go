package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/vicholz/chirp-web/descriptor"
	"github.com/vicholz/chirp-web/radioerr"
	"github.com/vicholz/chirp-web/transport"
)

func plainReadFraming() descriptor.ReadFraming {
	return descriptor.ReadFraming{Cmd: 'R', BlockSize: 8, BlockDeadline: time.Second}
}

func plainWriteFraming() descriptor.WriteFraming {
	return descriptor.WriteFraming{Cmd: 'W', BlockSize: 8, AckByte: 0x06, AckDeadline: time.Second}
}

// TestReadRequestFrameLength grounds spec §8 "Frame length": a read request
// is exactly 4 bytes.
func TestReadRequestFrameLength(t *testing.T) {
	ft := transport.NewFake()
	ft.Queue(make([]byte, 8))

	s := NewSession(ft, &descriptor.Protocol{Read: plainReadFraming()}, descriptor.Model{})
	if _, err := s.readBlock(s.protocol.Read, 0x0010, 8); err != nil {
		t.Fatalf("readBlock: %v", err)
	}
	writes := ft.Writes()
	if len(writes) != 1 || len(writes[0]) != 4 {
		t.Fatalf("expected a single 4-byte read request, got %d writes: % x", len(writes), writes)
	}
	if writes[0][0] != 'R' || writes[0][3] != 8 {
		t.Fatalf("unexpected read request: % x", writes[0])
	}
}

// TestWriteRequestFrameLength grounds spec §8 "Frame length": a write
// request is exactly 4 + size bytes.
func TestWriteRequestFrameLength(t *testing.T) {
	ft := transport.NewFake()
	ft.Queue([]byte{0x06})

	s := NewSession(ft, &descriptor.Protocol{Write: plainWriteFraming()}, descriptor.Model{})
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := s.writeBlock(s.protocol.Write, 0x0000, data); err != nil {
		t.Fatalf("writeBlock: %v", err)
	}
	writes := ft.Writes()
	if len(writes) != 1 || len(writes[0]) != 4+len(data) {
		t.Fatalf("expected a single %d-byte write request, got %d writes: % x", 4+len(data), len(writes), writes)
	}
}

// TestWriteACKFailure grounds spec §8 scenario 6: a write at address 0x0000
// gets back a NAK (0x15) instead of the configured ACK byte, and the engine
// reports write_failed with the address and the ACK actually observed.
func TestWriteACKFailure(t *testing.T) {
	ft := transport.NewFake()
	ft.Queue([]byte{0x15})

	s := NewSession(ft, &descriptor.Protocol{Write: plainWriteFraming()}, descriptor.Model{})
	err := s.writeBlock(s.protocol.Write, 0x0000, make([]byte, 8))
	if err == nil {
		t.Fatalf("expected a write_failed error")
	}
	var ce *radioerr.CloneError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a *radioerr.CloneError, got %T", err)
	}
	if ce.Kind != radioerr.WriteFailed {
		t.Fatalf("expected WriteFailed, got %v", ce.Kind)
	}
	if ce.Address != 0x0000 || !ce.HasAck || ce.Ack != 0x15 {
		t.Fatalf("unexpected error detail: %+v", ce)
	}
}

// TestBlockPlanRegionsTranslatesImageOffset grounds spec §4.4's "the
// encoded output is the concatenation of the decoded regions in that same
// order": for a LayoutRegions descriptor with more than one non-contiguous
// region, a block's position in the concatenated image must not be
// confused with its device address.
func TestBlockPlanRegionsTranslatesImageOffset(t *testing.T) {
	layout := descriptor.Layout{
		Kind: descriptor.LayoutRegions,
		Regions: []descriptor.Region{
			{Start: 0x1000, Size: 16},
			{Start: 0x9000, Size: 16},
		},
	}
	plan, total := blockPlan(layout, 8)
	if total != 32 {
		t.Fatalf("expected 32 total bytes, got %d", total)
	}
	want := []blockAddr{
		{addr: 0x1000, size: 8, imgOffset: 0},
		{addr: 0x1008, size: 8, imgOffset: 8},
		{addr: 0x9000, size: 8, imgOffset: 16},
		{addr: 0x9008, size: 8, imgOffset: 24},
	}
	if len(plan) != len(want) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(want), len(plan), plan)
	}
	for i, w := range want {
		if plan[i] != w {
			t.Fatalf("block %d: got %+v want %+v", i, plan[i], w)
		}
	}
}

// TestUploadNonContiguousRegions grounds the same invariant end to end:
// Upload must slice the image by its position in the concatenation, not by
// device address, or a second region beyond the first block's size either
// panics (slice out of range) or writes the wrong bytes.
func TestUploadNonContiguousRegions(t *testing.T) {
	ft := transport.NewFake()
	for i := 0; i < 4; i++ {
		ft.Queue([]byte{0x06})
	}

	proto := &descriptor.Protocol{
		Write: plainWriteFraming(),
		Layout: descriptor.Layout{
			Kind: descriptor.LayoutRegions,
			Regions: []descriptor.Region{
				{Start: 0x1000, Size: 8},
				{Start: 0x9000, Size: 8},
			},
		},
	}
	s := NewSession(ft, proto, descriptor.Model{})
	s.handshakeDone = true

	image := make([]byte, 16)
	for i := range image {
		image[i] = byte(i)
	}

	if err := s.Upload(image); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	writes := ft.Writes()
	if len(writes) != 2 {
		t.Fatalf("expected 2 write frames, got %d: % x", len(writes), writes)
	}
	// First region's frame carries device address 0x1000 and image[0:8].
	if writes[0][1] != 0x10 || writes[0][2] != 0x00 {
		t.Fatalf("first write frame has wrong address: % x", writes[0])
	}
	if string(writes[0][4:]) != string(image[0:8]) {
		t.Fatalf("first write frame carries wrong bytes: % x want % x", writes[0][4:], image[0:8])
	}
	// Second region's frame carries device address 0x9000 but the image's
	// *next* 8 bytes (image[8:16]), not image[0x9000:0x9008] which doesn't exist.
	if writes[1][1] != 0x90 || writes[1][2] != 0x00 {
		t.Fatalf("second write frame has wrong address: % x", writes[1])
	}
	if string(writes[1][4:]) != string(image[8:16]) {
		t.Fatalf("second write frame carries wrong bytes: % x want % x", writes[1][4:], image[8:16])
	}
}

// TestReadBlockRetryingRetriesOnTimeout grounds spec §8's retry-on-timeout
// scenario: a read that times out on its first attempt succeeds once the
// radio's reply becomes available on a later attempt, within
// config.BlockRetries.
func TestReadBlockRetryingRetriesOnTimeout(t *testing.T) {
	ft := transport.NewFake()
	framing := descriptor.ReadFraming{Cmd: 'R', BlockSize: 8, BlockDeadline: 30 * time.Millisecond}
	ft.QueueAfter(make([]byte, 8), 45*time.Millisecond)

	s := NewSession(ft, &descriptor.Protocol{Read: framing}, descriptor.Model{}, WithConfig(Config{BlockRetries: 2}))
	data, err := s.readBlockRetrying(framing, 0x0010, 8)
	if err != nil {
		t.Fatalf("readBlockRetrying: %v", err)
	}
	if len(data) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(data))
	}
	if writes := ft.Writes(); len(writes) < 2 {
		t.Fatalf("expected at least 2 read requests (one retry), got %d", len(writes))
	}
}

// TestReadBlockRetryingReturnsNonTimeoutErrorImmediately grounds the flip
// side: a ProtocolError (header echo mismatch) is not a timeout, so it must
// not be retried.
func TestReadBlockRetryingReturnsNonTimeoutErrorImmediately(t *testing.T) {
	ft := transport.NewFake()
	framing := descriptor.ReadFraming{Cmd: 'R', BlockSize: 8, BlockDeadline: time.Second, HeaderEcho: true}
	ft.Queue([]byte{'R', 0x00, 0x00, 8}) // wrong address in the echoed header

	s := NewSession(ft, &descriptor.Protocol{Read: framing}, descriptor.Model{}, WithConfig(Config{BlockRetries: 2}))
	_, err := s.readBlockRetrying(framing, 0x0010, 8)
	if err == nil {
		t.Fatalf("expected a protocol error")
	}
	var ce *radioerr.CloneError
	if !errors.As(err, &ce) || ce.Kind != radioerr.ProtocolError {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if writes := ft.Writes(); len(writes) != 1 {
		t.Fatalf("expected exactly 1 read request (no retry), got %d", len(writes))
	}
}

// TestWriteBlockRetryingRetriesOnWriteFailed grounds writeBlockRetrying's
// counterpart behavior: a missing ack is WriteFailed, which is retried the
// same way a read timeout is.
func TestWriteBlockRetryingRetriesOnWriteFailed(t *testing.T) {
	ft := transport.NewFake()
	framing := descriptor.WriteFraming{Cmd: 'W', BlockSize: 8, AckByte: 0x06, AckDeadline: 50 * time.Millisecond}
	ft.Queue([]byte{0x15})                           // NAK on the first attempt
	ft.QueueAfter([]byte{0x06}, 20*time.Millisecond) // ACK on the retry

	s := NewSession(ft, &descriptor.Protocol{Write: framing}, descriptor.Model{}, WithConfig(Config{BlockRetries: 2}))
	if err := s.writeBlockRetrying(framing, 0x0000, make([]byte, 8)); err != nil {
		t.Fatalf("writeBlockRetrying: %v", err)
	}
	if writes := ft.Writes(); len(writes) != 2 {
		t.Fatalf("expected 2 write requests (one retry), got %d", len(writes))
	}
}

// TestWriteBlockRetryingExhaustsRetries grounds the failure path: once
// config.BlockRetries is exhausted, the last WriteFailed error is returned.
func TestWriteBlockRetryingExhaustsRetries(t *testing.T) {
	ft := transport.NewFake()
	framing := descriptor.WriteFraming{Cmd: 'W', BlockSize: 8, AckByte: 0x06, AckDeadline: 5 * time.Millisecond}

	s := NewSession(ft, &descriptor.Protocol{Write: framing}, descriptor.Model{}, WithConfig(Config{BlockRetries: 1}))
	err := s.writeBlockRetrying(framing, 0x0000, make([]byte, 8))
	if err == nil {
		t.Fatalf("expected an error once retries are exhausted")
	}
	var ce *radioerr.CloneError
	if !errors.As(err, &ce) || ce.Kind != radioerr.WriteFailed {
		t.Fatalf("expected WriteFailed, got %v", err)
	}
	if writes := ft.Writes(); len(writes) != 2 {
		t.Fatalf("expected 2 write requests (1 initial + 1 retry), got %d", len(writes))
	}
}

// TestCancellationBoundedness grounds spec §8 "Cancellation boundedness":
// after Cancel(), Download returns within one block deadline rather than
// completing the whole transfer.
func TestCancellationBoundedness(t *testing.T) {
	ft := transport.NewFake()
	// Queue enough blocks that an uncancelled download would need several
	// reads; cancellation should stop it well before the last one.
	for i := 0; i < 10; i++ {
		ft.Queue(make([]byte, 8))
	}

	proto := &descriptor.Protocol{
		Read:   plainReadFraming(),
		Layout: descriptor.Layout{Kind: descriptor.LayoutRegions, Regions: []descriptor.Region{{Start: 0, Size: 80}}},
	}
	s := NewSession(ft, proto, descriptor.Model{})
	s.handshakeDone = true
	s.Cancel()

	start := time.Now()
	_, err := s.Download()
	elapsed := time.Since(start)

	var ce *radioerr.CloneError
	if !errors.As(err, &ce) || ce.Kind != radioerr.Cancelled {
		t.Fatalf("expected a Cancelled error, got %v", err)
	}
	if elapsed > plainReadFraming().BlockDeadline {
		t.Fatalf("cancellation took longer than one block deadline: %v", elapsed)
	}
}
