package codec

import "encoding/binary"

// readBCDLE decodes a little-endian packed-BCD integer: buf[0] holds the two
// least-significant decimal digits (high nibble = tens, low nibble = units),
// buf[len(buf)-1] the two most-significant. The result is the plain decimal
// value with no unit multiplier applied.
func readBCDLE(buf []byte) int64 {
	var v int64
	mul := int64(1)
	for _, b := range buf {
		tens := int64(b >> 4)
		units := int64(b & 0x0F)
		v += (tens*10 + units) * mul
		mul *= 100
	}
	return v
}

// writeBCDLE encodes value (a plain decimal integer, no unit multiplier) into
// buf as little-endian packed BCD, the inverse of readBCDLE.
func writeBCDLE(buf []byte, value int64) {
	for i := range buf {
		pair := value % 100
		value /= 100
		tens := byte(pair / 10)
		units := byte(pair % 10)
		buf[i] = tens<<4 | units
	}
}

// isAllBytes reports whether every byte in buf equals b, used for the
// all-FF and all-zero empty-slot sentinels.
func isAllBytes(buf []byte, b byte) bool {
	for _, v := range buf {
		if v != b {
			return false
		}
	}
	return true
}

func readU16LE(buf []byte) uint16 { return binary.LittleEndian.Uint16(buf) }
func writeU16LE(buf []byte, v uint16) { binary.LittleEndian.PutUint16(buf, v) }
func readU16BE(buf []byte) uint16 { return binary.BigEndian.Uint16(buf) }
func writeU16BE(buf []byte, v uint16) { binary.BigEndian.PutUint16(buf, v) }
func readU32LE(buf []byte) uint32 { return binary.LittleEndian.Uint32(buf) }
func writeU32LE(buf []byte, v uint32) { binary.LittleEndian.PutUint32(buf, v) }

// readString trims trailing pad bytes (any run of 0xFF, 0x00 and space) and
// returns the remaining ASCII text.
func readString(buf []byte) string {
	end := len(buf)
	for end > 0 && (buf[end-1] == 0xFF || buf[end-1] == 0x00 || buf[end-1] == ' ') {
		end--
	}
	return string(buf[:end])
}

// writeString writes s left-justified into buf, padding the remainder with
// pad.
func writeString(buf []byte, s string, pad byte) {
	n := copy(buf, s)
	for i := n; i < len(buf); i++ {
		buf[i] = pad
	}
}
