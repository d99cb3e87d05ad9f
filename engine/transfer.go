package engine

import (
	"errors"
	"time"

	"github.com/vicholz/chirp-web/descriptor"
	"github.com/vicholz/chirp-web/radioerr"
)

// readBlockRetrying retries a timed-out block read up to config.BlockRetries
// times before giving up. Any other error kind is returned immediately. The
// duration observed includes every retry, since that is the actual cost of
// completing the block from the caller's point of view.
func (s *Session) readBlockRetrying(f descriptor.ReadFraming, addr, size int) ([]byte, error) {
	start := time.Now()
	defer func() { s.metrics.observeBlockDuration(time.Since(start)) }()

	var lastErr error
	for attempt := 0; attempt <= s.config.BlockRetries; attempt++ {
		data, err := s.readBlock(f, addr, size)
		if err == nil {
			return data, nil
		}
		lastErr = err
		var ce *radioerr.CloneError
		if !errors.As(err, &ce) || ce.Kind != radioerr.Timeout {
			return nil, err
		}
		s.logger.Info("block read at 0x%04x timed out, retrying (attempt %d/%d)", addr, attempt+1, s.config.BlockRetries)
	}
	return nil, lastErr
}

// writeBlockRetrying is writeBlock's counterpart to readBlockRetrying.
// writeBlock reports both a missing ack and a NAK byte as WriteFailed (it
// has no separate Timeout kind of its own), so both are treated as
// transient here and retried the same way a read timeout would be.
func (s *Session) writeBlockRetrying(f descriptor.WriteFraming, addr int, data []byte) error {
	start := time.Now()
	defer func() { s.metrics.observeBlockDuration(time.Since(start)) }()

	var lastErr error
	for attempt := 0; attempt <= s.config.BlockRetries; attempt++ {
		err := s.writeBlock(f, addr, data)
		if err == nil {
			return nil
		}
		lastErr = err
		var ce *radioerr.CloneError
		if !errors.As(err, &ce) || ce.Kind != radioerr.WriteFailed {
			return err
		}
		s.logger.Info("block write at 0x%04x not acknowledged, retrying (attempt %d/%d)", addr, attempt+1, s.config.BlockRetries)
	}
	return lastErr
}

// Download runs the handshake (if not already run) followed by a full block
// read of the descriptor's layout, returning the plaintext memory image.
func (s *Session) Download() ([]byte, error) {
	if !s.handshakeDone {
		if err := s.Handshake(); err != nil {
			return nil, err
		}
	}

	f := s.protocol.Read
	plan, total := blockPlan(s.protocol.Layout, f.BlockSize)
	s.logger.Info("download: starting, %d blocks, %d bytes total", len(plan), total)

	out := make([]byte, 0, total)
	var done int64
	for _, b := range plan {
		if s.isCancelled() {
			return out, radioerr.CancelledErr("block_read", done)
		}

		data, err := s.readBlockRetrying(f, b.addr, b.size)
		if err != nil {
			if b.optional {
				s.logger.Info("optional region at 0x%04x failed, truncating: %v", b.addr, err)
				break
			}
			return out, err
		}
		if s.protocol.Obfuscation.Kind != descriptor.ObfuscationNone {
			data = deobfuscate(s.protocol.Obfuscation, data)
		}
		out = append(out, data...)
		done += int64(len(data))
		s.metrics.incBlocksRead()
		s.metrics.addBytes(len(data))
		s.emitProgress("block_read", done, total)
	}
	s.logger.Info("download: complete, %d bytes read", done)
	return out, nil
}

// Upload runs the handshake (if not already run) followed by a full block
// write of image over the descriptor's layout.
func (s *Session) Upload(image []byte) error {
	if !s.handshakeDone {
		if err := s.Handshake(); err != nil {
			return err
		}
	}

	f := s.protocol.Write
	plan, total := blockPlan(s.protocol.Layout, f.BlockSize)
	s.logger.Info("upload: starting, %d blocks, %d bytes total", len(plan), total)

	var done int64
	for _, b := range plan {
		if s.isCancelled() {
			return radioerr.CancelledErr("block_write", done)
		}
		if b.imgOffset+b.size > len(image) {
			break
		}
		block := image[b.imgOffset : b.imgOffset+b.size]
		if s.protocol.Obfuscation.Kind != descriptor.ObfuscationNone {
			block = obfuscateForWrite(s.protocol.Obfuscation, block)
		}
		if err := s.writeBlockRetrying(f, b.addr, block); err != nil {
			return err
		}
		done += int64(b.size)
		s.metrics.incBlocksWritten()
		s.metrics.addBytes(b.size)
		s.emitProgress("block_write", done, total)
	}
	s.logger.Info("upload: complete, %d bytes written", done)
	return nil
}

// Probe runs the handshake only, a dry run that confirms link and model
// identity without transferring any memory: a fast "is this radio connected
// and compatible" check before committing to a full download.
func (s *Session) Probe() ([]byte, error) {
	if err := s.Handshake(); err != nil {
		return nil, err
	}
	return s.Header(), nil
}
