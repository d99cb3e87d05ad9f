package engine

import (
	"fmt"

	"github.com/vicholz/chirp-web/descriptor"
	"github.com/vicholz/chirp-web/radioerr"
)

// Handshake runs the descriptor's selected state machine. On success the
// identification bytes, if any, are retained and available from Header.
func (s *Session) Handshake() error {
	s.logger.Info("handshake: starting variant %s", s.protocol.Handshake.Variant)

	var err error
	switch s.protocol.Handshake.Variant {
	case descriptor.VariantMagic:
		err = s.handshakeMagic()
	case descriptor.VariantProgram:
		err = s.handshakeProgram()
	case descriptor.VariantUV17Pro:
		err = s.handshakeUV17Pro()
	default:
		err = radioerr.New(radioerr.HandshakeFailed, fmt.Sprintf("unknown handshake variant %v", s.protocol.Handshake.Variant))
	}
	variant := s.protocol.Handshake.Variant.String()
	if err != nil {
		s.metrics.incHandshakeOutcome(variant, "failure")
		s.logger.Info("handshake: failed: %v", err)
		return err
	}
	s.metrics.incHandshakeOutcome(variant, "success")
	s.handshakeDone = true
	s.logger.Info("handshake: complete, header=%d bytes", len(s.header))
	return nil
}
