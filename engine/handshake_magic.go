package engine

import (
	"time"

	"github.com/vicholz/chirp-web/radioerr"
	"github.com/vicholz/chirp-web/rlog"
)

const staleDrainWindow = 60 * time.Millisecond

// handshakeMagic drives Variant M: S0_start -> S1_send_magic ->
// S2_await_ack -> S3_send_ident -> S4_read_ident -> S5_post_ack -> DONE.
func (s *Session) handshakeMagic() error {
	p := s.protocol.Handshake.Magic

	var lastResp []byte
	acked := false
	for i, candidate := range p.Candidates {
		if i > 0 {
			// stale-drain between attempts; a drain timeout is not a failure.
			s.transport.ReadAvailable(64, staleDrainWindow)
		}

		s.logger.Debug("%s", rlog.FormatFrame("write", 0, candidate))
		if err := s.writeBytesPaced(candidate, p.InterByteDelay); err != nil {
			return radioerr.Wrap(radioerr.PortUnavailable, "handshake", err)
		}

		resp, err := s.transport.ReadExact(1, p.AckTimeout)
		if err != nil {
			continue
		}
		s.logger.Debug("%s", rlog.FormatFrame("read", 0, resp))
		lastResp = resp
		if resp[0] == p.AckByte {
			acked = true
			break
		}
	}
	if !acked {
		return radioerr.HandshakeFailedErr("no magic candidate acknowledged", lastResp)
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

	if p.AckAfterIdent {
		s.transport.Write([]byte{p.AckByte})
		s.transport.ReadExact(1, staleDrainWindow) // trailing byte, discarded
	}

	checkFirmware(s.model, s.header, s.logger)
	return nil
}

// writeBytesPaced writes data one byte at a time with delay between writes,
// matching the descriptor's inter-byte timing requirement.
func (s *Session) writeBytesPaced(data []byte, delay time.Duration) error {
	for i, b := range data {
		if err := s.transport.Write([]byte{b}); err != nil {
			return err
		}
		if i < len(data)-1 && delay > 0 {
			time.Sleep(delay)
		}
	}
	return nil
}

// readIdent reads identification bytes one at a time up to maxLen, stopping
// early at sentinel when hasSentinel is set and at least minLen bytes have
// been read (a sentinel byte seen earlier is kept as data). Fewer than
// minLen bytes is a handshake failure.
func (s *Session) readIdent(maxLen, minLen int, hasSentinel bool, sentinel byte) ([]byte, error) {
	var ident []byte
	for len(ident) < maxLen {
		b, err := s.transport.ReadExact(1, time.Second)
		if err != nil {
			break
		}
		ident = append(ident, b[0])
		if hasSentinel && b[0] == sentinel && len(ident) >= minLen {
			break
		}
	}
	if len(ident) < minLen {
		return nil, radioerr.HandshakeFailedErr("identification response too short", ident)
	}
	return ident, nil
}
