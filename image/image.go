// Package image holds a decoded radio memory dump plus enough metadata to
// know what produced it, and the container format used to carry both
// together in a single file.
package image

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"github.com/vicholz/chirp-web/radioerr"
)

// sentinel separates the raw memory bytes from the trailing metadata block.
// It is deliberately not valid UTF-8 or a plausible memory pattern, so a
// naive scan for it inside the raw bytes should never find a false match.
var sentinel = []byte{0x00, 0xFF, 'c', 'h', 'i', 'r', 'p', 0xEE, 'i', 'm', 'g', 0x00, 0x01}

// RadioImage is a raw memory dump tagged with the model identity that
// produced it, pairing the payload with its provenance.
type RadioImage struct {
	Vendor     string
	Model      string
	ProtocolID string
	Raw        []byte

	// Header carries the post-handshake identification bytes, if the
	// engine retained any, for provenance only; it plays no part in the
	// codec.
	Header []byte `json:"header,omitempty"`
}

// metadata is the JSON object base64-encoded after the sentinel.
type metadata struct {
	Vendor     string `json:"vendor"`
	Model      string `json:"model"`
	ProtocolID string `json:"protocol_id,omitempty"`
	Header     string `json:"header,omitempty"` // hex-encoded
}

// WriteContainer serializes img as raw bytes, the fixed sentinel, and
// base64 of a JSON metadata object, in that order. The result is bit-exact
// and reproducible: encoding twice from the same RadioImage produces
// identical bytes.
func WriteContainer(img RadioImage) ([]byte, error) {
	md := metadata{
		Vendor:     img.Vendor,
		Model:      img.Model,
		ProtocolID: img.ProtocolID,
	}
	if len(img.Header) > 0 {
		md.Header = hex.EncodeToString(img.Header)
	}
	j, err := json.Marshal(md)
	if err != nil {
		return nil, radioerr.Wrap(radioerr.CodecError, "container_write", err)
	}

	var buf bytes.Buffer
	buf.Write(img.Raw)
	buf.Write(sentinel)
	enc := base64.StdEncoding.EncodeToString(j)
	buf.WriteString(enc)
	return buf.Bytes(), nil
}

// ReadContainer splits a container back into its raw bytes and metadata. It
// fails if the sentinel is absent or the trailing metadata does not decode,
// since a tool that silently ignored either would violate the "preserve the
// sentinel and metadata exactly" contract.
func ReadContainer(data []byte) (RadioImage, error) {
	idx := bytes.Index(data, sentinel)
	if idx < 0 {
		return RadioImage{}, radioerr.New(radioerr.CodecError, "container sentinel not found")
	}
	raw := data[:idx]
	tail := data[idx+len(sentinel):]

	j, err := base64.StdEncoding.DecodeString(string(tail))
	if err != nil {
		return RadioImage{}, radioerr.Wrap(radioerr.CodecError, "container_read", err)
	}
	var md metadata
	if err := json.Unmarshal(j, &md); err != nil {
		return RadioImage{}, radioerr.Wrap(radioerr.CodecError, "container_read", err)
	}

	img := RadioImage{
		Vendor:     md.Vendor,
		Model:      md.Model,
		ProtocolID: md.ProtocolID,
		Raw:        append([]byte(nil), raw...),
	}
	if md.Header != "" {
		if hdr, err := hex.DecodeString(md.Header); err == nil {
			img.Header = hdr
		}
	}
	return img, nil
}
