package engine

import (
	"bytes"
	"time"

	"github.com/vicholz/chirp-web/radioerr"
	"github.com/vicholz/chirp-web/rlog"
)

// handshakeProgram drives Variant P: optional pre-command, the literal
// program phrase, an ACK retry loop, then an optional identification
// exchange.
func (s *Session) handshakeProgram() error {
	p := s.protocol.Handshake.Program

	if len(p.PreCommand) > 0 {
		if err := s.transport.Write(p.PreCommand); err != nil {
			return radioerr.Wrap(radioerr.PortUnavailable, "handshake", err)
		}
		if p.PreDelay > 0 {
			time.Sleep(p.PreDelay)
		}
	}

	s.logger.Debug("%s", rlog.FormatFrame("write", 0, p.Phrase))
	if err := s.transport.Write(p.Phrase); err != nil {
		return radioerr.Wrap(radioerr.PortUnavailable, "handshake", err)
	}

	acked := false
	for attempt := 0; attempt < p.AckRetries; attempt++ {
		resp, err := s.transport.ReadExact(1, p.AckWindow)
		if err != nil {
			continue
		}
		s.logger.Debug("%s", rlog.FormatFrame("read", 0, resp))
		if resp[0] == p.AckByte {
			acked = true
			break
		}
	}
	if !acked {
		return radioerr.HandshakeFailedErr("program phrase not acknowledged", nil)
	}

	if !p.HasIdent {
		return nil
	}

	if err := s.transport.Write(p.IdentCommand); err != nil {
		return radioerr.Wrap(radioerr.PortUnavailable, "handshake", err)
	}
	ident, err := s.readIdent(p.IdentMaxLen, p.IdentMinLen, p.HasSentinel, p.IdentSentinel)
	if err != nil {
		return err
	}
	s.logger.Debug("%s", rlog.FormatFrame("read", 0, ident))
	s.header = ident

	if len(p.IdentPrefix) > 0 && !bytes.HasPrefix(ident, p.IdentPrefix) {
		// warning-only, never fatal.
		s.logger.Info("identification prefix mismatch: got % x, expected prefix % x", ident, p.IdentPrefix)
	}

	checkFirmware(s.model, s.header, s.logger)
	return nil
}
