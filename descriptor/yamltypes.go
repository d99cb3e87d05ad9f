package descriptor

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HexBytes decodes a YAML scalar like "50 BB FF 20 12 07 25" (spaces
// optional) into raw bytes. Descriptor data files use it for every literal
// the wire protocol names in hex.
type HexBytes []byte

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *HexBytes) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		*h = nil
		return nil
	}
	if len(s) > 1 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex literal %q: %w", s, err)
	}
	*h = b
	return nil
}

// HexByte decodes a single-byte hex scalar like "06".
type HexByte byte

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *HexByte) UnmarshalYAML(value *yaml.Node) error {
	var b HexBytes
	if err := b.UnmarshalYAML(value); err != nil {
		return err
	}
	if len(b) != 1 {
		return fmt.Errorf("expected exactly one byte, got %d", len(b))
	}
	*h = HexByte(b[0])
	return nil
}

// Dur decodes a Go duration string like "10ms" or "3s".
type Dur time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Dur) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Dur(parsed)
	return nil
}
