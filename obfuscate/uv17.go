// Package obfuscate implements the pure keyed-XOR and checksum primitives
// the clone protocols layer over their raw memory blocks. Every function
// here is pure: it returns a new buffer and never mutates its input.
package obfuscate

// uv17KeyTable holds the 20 fixed 4-byte key rows used by the UV17-style
// radios. Row selection (symbol_index) is a descriptor field.
var uv17KeyTable = [20][4]byte{
	{0x16, 0x6C, 0x14, 0xE6},
	{0x2E, 0x8A, 0x64, 0xB4},
	{0x1E, 0xF0, 0xB2, 0x5A},
	{0x38, 0xC6, 0x0A, 0x8C},
	{0x74, 0x1E, 0xB2, 0x30},
	{0x40, 0xE4, 0x92, 0x1A},
	{0x8A, 0x2E, 0x44, 0xB0},
	{0x1C, 0x54, 0xE2, 0x9A},
	{0x30, 0xB2, 0x64, 0x1E},
	{0xC8, 0x2A, 0x4E, 0x60},
	{0x74, 0x0A, 0xC2, 0x38},
	{0x1E, 0x90, 0x4C, 0xA2},
	{0x2C, 0x64, 0xE0, 0x9A},
	{0x54, 0x1A, 0xC8, 0x3E},
	{0x90, 0x2E, 0x64, 0x1C},
	{0x38, 0xA4, 0x0E, 0xC2},
	{0x64, 0x1C, 0x9A, 0x30},
	{0xB0, 0x2E, 0x74, 0x1A},
	{0x1A, 0x64, 0xC2, 0x9E},
	{0xE4, 0x1E, 0x38, 0x2C},
}

// UV17KeyRows is the number of usable symbol_index values, 0..19.
const UV17KeyRows = len(uv17KeyTable)

// uv17Transform applies (or reverses, since it is an involution) the UV17
// keyed XOR to a single byte at wire position pos, given key row K.
func uv17Transform(b byte, pos int, row [4]byte) byte {
	k := row[pos%4]
	switch {
	case k == 0x20, b == 0x00, b == 0xFF, b == k, b == k^0xFF:
		return b
	default:
		return b ^ k
	}
}

// UV17XOR applies the UV17-style keyed XOR to data using the given symbol
// index (0..19). It is symmetric: encrypting an already-encrypted buffer
// with the same key decrypts it.
func UV17XOR(data []byte, symbolIndex int) []byte {
	row := uv17KeyTable[symbolIndex%UV17KeyRows]
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = uv17Transform(b, i, row)
	}
	return out
}
