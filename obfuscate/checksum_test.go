package obfuscate

import "testing"

// TestChecksumCorrectness grounds spec §8 "Checksum correctness":
// verify(append(data, checksum(data)), k) == true, and flipping any single
// byte in data makes it false.
func TestChecksumCorrectness(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0xAA, 0x7F, 0x00, 0xFF, 0x10}

	for _, kind := range []ChecksumKind{ChecksumSum, ChecksumXOR} {
		framed := Append(kind, 0x00, data)
		if !Verify(kind, 0x00, framed) {
			t.Fatalf("kind %v: freshly-appended checksum did not verify", kind)
		}

		for i := range data {
			corrupt := append([]byte(nil), framed...)
			corrupt[i] ^= 0x01
			if Verify(kind, 0x00, corrupt) {
				t.Fatalf("kind %v: flipping byte %d was not detected", kind, i)
			}
		}
	}
}

func TestChecksumSumUsesSeed(t *testing.T) {
	data := []byte{0x10, 0x20, 0x30}
	a := Compute(ChecksumSum, 0x00, data)
	b := Compute(ChecksumSum, 0x05, data)
	if a == b {
		t.Fatalf("different seeds should generally produce different sums")
	}
	if b != byte((0x05+0x10+0x20+0x30)%256) {
		t.Fatalf("unexpected seeded sum: got 0x%02x", b)
	}
}

func TestRangeSumChecksum(t *testing.T) {
	data := []byte{0x00, 0x10, 0x20, 0x30, 0x00}
	// storedAt lands outside [start, stop] so a self-referential checksum
	// byte doesn't include itself in the sum.
	data[4] = ComputeRange(data, 1, 3)
	if !VerifyRange(data, 1, 3, 4) {
		t.Fatalf("range-sum checksum did not verify")
	}
	data[2] ^= 0x01
	if VerifyRange(data, 1, 3, 4) {
		t.Fatalf("corrupting a byte in range should invalidate the checksum")
	}
}
