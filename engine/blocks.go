package engine

import (
	"time"

	"github.com/vicholz/chirp-web/descriptor"
	"github.com/vicholz/chirp-web/obfuscate"
	"github.com/vicholz/chirp-web/radioerr"
	"github.com/vicholz/chirp-web/rlog"
)

// blockAddr is one block's device address and length, as produced by walking
// a Layout in transfer order.
type blockAddr struct {
	addr int
	size int
	// imgOffset is this block's position within the *concatenated* decoded
	// image (Download's return value / Upload's input), which only equals
	// addr when the layout is a single region starting at 0. A LayoutRegions
	// descriptor with more than one region, or one not starting at 0, needs
	// this translation to index the right slice of the image.
	imgOffset int
	// optional marks a region whose read failure is downgraded to a
	// warning and truncated rather than failing the whole transfer.
	optional bool
}

// blockPlan walks a Layout into an ordered list of block addresses, one per
// protocol block size, and the total byte budget for progress reporting.
func blockPlan(layout descriptor.Layout, blockSize int) ([]blockAddr, int64) {
	var plan []blockAddr
	var total int64

	appendRange := func(start, end int, optional bool) {
		for a := start; a < end; a += blockSize {
			n := blockSize
			if a+n > end {
				n = end - a
			}
			plan = append(plan, blockAddr{addr: a, size: n, imgOffset: int(total), optional: optional})
			total += int64(n)
		}
	}

	switch layout.Kind {
	case descriptor.LayoutMainAux:
		appendRange(layout.MainStart, layout.MainEnd, false)
		if layout.HasAux {
			appendRange(layout.AuxStart, layout.AuxEnd, true)
		}
	case descriptor.LayoutRegions:
		for _, r := range layout.Regions {
			appendRange(r.Start, r.Start+r.Size, false)
		}
	}
	return plan, total
}

// deobfuscate applies the descriptor's obfuscation scheme in reverse. The
// UV17 XOR is an involution and is applied unchanged; Wouxun uses its
// separate decrypt routine (obfuscateForWrite uses the matching encrypt).
func deobfuscate(kind descriptor.Obfuscation, block []byte) []byte {
	switch kind.Kind {
	case descriptor.ObfuscationUV17Pro:
		return obfuscate.UV17XOR(block, kind.SymbolIndex)
	case descriptor.ObfuscationWouxun:
		return obfuscate.WouxunDecrypt(block, kind.InitXOR)
	default:
		return block
	}
}

func obfuscateForWrite(kind descriptor.Obfuscation, block []byte) []byte {
	switch kind.Kind {
	case descriptor.ObfuscationUV17Pro:
		return obfuscate.UV17XOR(block, kind.SymbolIndex)
	case descriptor.ObfuscationWouxun:
		return obfuscate.WouxunEncrypt(block, kind.InitXOR)
	default:
		return block
	}
}

// readBlock performs one block-read cycle.
func (s *Session) readBlock(f descriptor.ReadFraming, addr, size int) ([]byte, error) {
	req := []byte{f.Cmd, byte(addr >> 8), byte(addr), byte(size)}
	s.logger.Debug("%s", rlog.FormatFrame("write", addr, req))
	if err := s.transport.Write(req); err != nil {
		return nil, radioerr.Wrap(radioerr.PortUnavailable, "block_read", err)
	}

	if f.HeaderEcho {
		hdr, err := s.transport.ReadExact(4, f.BlockDeadline)
		if err != nil {
			return nil, radioerr.TimeoutErr("block_read", addr, true)
		}
		if hdr[0] != f.Cmd {
			return nil, radioerr.ProtocolErr(addr, int(hdr[0]), int(f.Cmd))
		}
		if echoed := int(hdr[1])<<8 | int(hdr[2]); echoed != addr {
			return nil, radioerr.ProtocolErr(addr, echoed, addr)
		}
		if int(hdr[3]) != size {
			return nil, radioerr.ProtocolErr(addr, int(hdr[3]), size)
		}
	}

	var data []byte
	if f.StripPrefix > 0 {
		buf, err := s.transport.ReadExact(f.StripPrefix+size, f.BlockDeadline)
		if err != nil {
			return nil, radioerr.TimeoutErr("block_read", addr, true)
		}
		data = buf[f.StripPrefix:]
	} else {
		buf, err := s.transport.ReadExact(size, f.BlockDeadline)
		if err != nil {
			return nil, radioerr.TimeoutErr("block_read", addr, true)
		}
		data = buf
	}

	s.logger.Debug("%s", rlog.FormatFrame("read", addr, data))

	if f.AckAfterBlock {
		s.transport.Write([]byte{f.AckByte})
		if f.PostAckDelay > 0 {
			time.Sleep(f.PostAckDelay)
		}
	}

	return data, nil
}

// writeBlock performs one block-write cycle.
func (s *Session) writeBlock(f descriptor.WriteFraming, addr int, data []byte) error {
	req := make([]byte, 0, 4+len(data))
	req = append(req, f.Cmd, byte(addr>>8), byte(addr), byte(len(data)))
	req = append(req, data...)
	s.logger.Debug("%s", rlog.FormatFrame("write", addr, req))
	if err := s.transport.Write(req); err != nil {
		return radioerr.Wrap(radioerr.PortUnavailable, "block_write", err)
	}

	ack, err := s.transport.ReadExact(1, f.AckDeadline)
	if err != nil {
		return radioerr.WriteFailedErr(addr, 0, false)
	}
	s.logger.Debug("%s", rlog.FormatFrame("read_ack", addr, ack))
	if ack[0] != f.AckByte {
		return radioerr.WriteFailedErr(addr, int(ack[0]), true)
	}
	if f.PostAckDelay > 0 {
		time.Sleep(f.PostAckDelay)
	}
	return nil
}
