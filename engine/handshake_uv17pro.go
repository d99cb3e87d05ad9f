package engine

import (
	"bytes"
	"time"

	"github.com/vicholz/chirp-web/radioerr"
	"github.com/vicholz/chirp-web/rlog"
)

// handshakeUV17Pro drives Variant U: try each identification literal as a
// single frame, poll for the fingerprint, then run the fixed follow-up
// command sequence.
func (s *Session) handshakeUV17Pro() error {
	p := s.protocol.Handshake.UV17Pro

	matched := false
	for _, candidate := range p.IdentCandidates {
		s.transport.ReadAvailable(64, staleDrainWindow)

		s.logger.Debug("%s", rlog.FormatFrame("write", 0, candidate))
		if err := s.transport.Write(candidate); err != nil {
			return radioerr.Wrap(radioerr.PortUnavailable, "handshake", err)
		}
		time.Sleep(p.InitialWait)

		var resp []byte
		for attempt := 0; attempt < p.PollAttempts; attempt++ {
			chunk, err := s.transport.ReadAvailable(len(p.Fingerprint)-len(resp), p.PollInterval)
			if err == nil {
				resp = append(resp, chunk...)
			}
			if len(resp) >= len(p.Fingerprint) {
				break
			}
		}
		s.logger.Debug("%s", rlog.FormatFrame("read", 0, resp))
		if len(resp) >= len(p.Fingerprint) && bytes.Equal(resp[:len(p.Fingerprint)], p.Fingerprint) {
			matched = true
			break
		}
	}
	if !matched {
		return radioerr.HandshakeFailedErr("no identification candidate produced the expected fingerprint", nil)
	}

	var header []byte
	for _, fu := range p.FollowUps {
		s.logger.Debug("%s", rlog.FormatFrame("write", 0, fu.Command))
		if err := s.transport.Write(fu.Command); err != nil {
			return radioerr.Wrap(radioerr.PortUnavailable, "handshake", err)
		}
		if fu.ResponseLen > 0 {
			resp, err := s.transport.ReadExact(fu.ResponseLen, time.Second)
			if err != nil {
				return radioerr.Wrap(radioerr.Timeout, "handshake_follow_up_"+fu.Name, err)
			}
			s.logger.Debug("%s", rlog.FormatFrame("read", 0, resp))
			header = append(header, resp...)
		}
		if p.FollowUpDelay > 0 {
			time.Sleep(p.FollowUpDelay)
		}
	}
	s.header = header

	checkFirmware(s.model, s.header, s.logger)
	return nil
}
