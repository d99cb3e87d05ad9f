package image

import (
	"bytes"
	"testing"
)

func TestContainerRoundTrip(t *testing.T) {
	img := RadioImage{
		Vendor:     "Baofeng",
		Model:      "UV-17Pro",
		ProtocolID: "uv17pro",
		Raw:        []byte{0x01, 0x02, 0x03, 0xFF, 0x00},
		Header:     []byte{0xAA, 0xBB, 0xCC},
	}

	data, err := WriteContainer(img)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.Contains(data, sentinel) {
		t.Fatalf("container missing sentinel")
	}

	got, err := ReadContainer(data)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Vendor != img.Vendor || got.Model != img.Model || got.ProtocolID != img.ProtocolID {
		t.Fatalf("metadata mismatch: %+v", got)
	}
	if !bytes.Equal(got.Raw, img.Raw) {
		t.Fatalf("raw mismatch: got % x want % x", got.Raw, img.Raw)
	}
	if !bytes.Equal(got.Header, img.Header) {
		t.Fatalf("header mismatch: got % x want % x", got.Header, img.Header)
	}
}

func TestContainerRawMayContainSentinelLikePrefixes(t *testing.T) {
	// A raw image containing 0x00 0xFF bytes on their own (but not the full
	// sentinel run) must not confuse the split.
	raw := []byte{0x00, 0xFF, 0x00, 0xFF, 0x10, 0x20}
	img := RadioImage{Vendor: "Wouxun", Model: "KG-UV6D", Raw: raw}

	data, err := WriteContainer(img)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadContainer(data)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got.Raw, raw) {
		t.Fatalf("raw mismatch: got % x want % x", got.Raw, raw)
	}
}

func TestReadContainerMissingSentinel(t *testing.T) {
	if _, err := ReadContainer([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatalf("expected an error for a container missing its sentinel")
	}
}
