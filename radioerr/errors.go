// Package radioerr defines the sum-typed errors shared by the transport,
// engine and codec layers.
package radioerr

import "fmt"

// Kind categorizes a CloneError.
type Kind int

const (
	// UnsupportedTransport means the platform lacks the serial capability
	// the transport needs (e.g. no termios support).
	UnsupportedTransport Kind = iota
	// PermissionDenied means the port exists but could not be opened.
	PermissionDenied
	// PortUnavailable means the port could not be acquired for another reason
	// (already open, unplugged mid-open, etc).
	PortUnavailable
	// HandshakeFailed means every handshake candidate/attempt was exhausted.
	HandshakeFailed
	// ProtocolError means a response echoed the wrong command, address or length.
	ProtocolError
	// Timeout means a deadline expired at a specific step.
	Timeout
	// WriteFailed means an uploaded block was not acknowledged correctly.
	WriteFailed
	// CodecError means the memory-format descriptor could not be applied
	// to the data at hand.
	CodecError
	// Cancelled means cooperative cancellation was honored.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case UnsupportedTransport:
		return "unsupported_transport"
	case PermissionDenied:
		return "permission_denied"
	case PortUnavailable:
		return "port_unavailable"
	case HandshakeFailed:
		return "handshake_failed"
	case ProtocolError:
		return "protocol_error"
	case Timeout:
		return "timeout"
	case WriteFailed:
		return "write_failed"
	case CodecError:
		return "codec_error"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// CloneError is the single error type returned by this module. Fields not
// relevant to Kind are left zero.
type CloneError struct {
	Kind Kind

	// Phase names the engine phase active when the error occurred
	// (e.g. "handshake", "block_read", "block_write").
	Phase string

	// Address is the memory address involved, when applicable.
	Address    int
	HasAddress bool

	// Observed/Expected carry the mismatched values for ProtocolError.
	Observed int
	Expected int

	// LastResponse carries the final bytes seen for HandshakeFailed.
	LastResponse []byte

	// Ack carries the ACK byte actually received for WriteFailed.
	Ack    int
	HasAck bool

	// ChannelIndex/Field identify the failing slot for CodecError.
	ChannelIndex int
	Field        string

	// BytesDone carries the partial progress for Cancelled.
	BytesDone int64

	// Reason is a short human-readable cause, used by HandshakeFailed and CodecError.
	Reason string

	// Cause wraps an underlying error (e.g. from the transport).
	Cause error
}

func (e *CloneError) Error() string {
	switch e.Kind {
	case HandshakeFailed:
		return fmt.Sprintf("handshake failed: %s", e.Reason)
	case ProtocolError:
		return fmt.Sprintf("protocol error at %s: observed 0x%02x, expected 0x%02x", addrStr(e), e.Observed, e.Expected)
	case Timeout:
		return fmt.Sprintf("timeout during %s%s", e.Phase, addrSuffix(e))
	case WriteFailed:
		if e.HasAck {
			return fmt.Sprintf("write to 0x%04x not acknowledged: got 0x%02x", e.Address, e.Ack)
		}
		return fmt.Sprintf("write to 0x%04x not acknowledged", e.Address)
	case CodecError:
		return fmt.Sprintf("codec error: channel %d field %q: %s", e.ChannelIndex, e.Field, e.Reason)
	case Cancelled:
		return fmt.Sprintf("cancelled during %s after %d bytes", e.Phase, e.BytesDone)
	case PermissionDenied:
		return fmt.Sprintf("permission denied: %s", e.Reason)
	case PortUnavailable:
		return fmt.Sprintf("port unavailable: %s", e.Reason)
	case UnsupportedTransport:
		return fmt.Sprintf("unsupported transport: %s", e.Reason)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
}

func (e *CloneError) Unwrap() error { return e.Cause }

func addrStr(e *CloneError) string {
	if e.HasAddress {
		return fmt.Sprintf("0x%04x", e.Address)
	}
	return "<no address>"
}

func addrSuffix(e *CloneError) string {
	if e.HasAddress {
		return fmt.Sprintf(" at 0x%04x", e.Address)
	}
	return ""
}

// Error makes a Kind usable as an errors.Is target.
func (k Kind) Error() string { return k.String() }

// Is lets errors.Is match on Kind alone, e.g. errors.Is(err, radioerr.Timeout).
func (e *CloneError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind == k
}

// Is reports whether target is a CloneError of kind k.
func (k Kind) Is(target error) bool {
	ce, ok := target.(*CloneError)
	return ok && ce.Kind == k
}

// New builds a bare CloneError of the given kind with a reason.
func New(kind Kind, reason string) *CloneError {
	return &CloneError{Kind: kind, Reason: reason}
}

// Wrap builds a CloneError of the given kind wrapping cause.
func Wrap(kind Kind, phase string, cause error) *CloneError {
	return &CloneError{Kind: kind, Phase: phase, Cause: cause, Reason: causeReason(cause)}
}

func causeReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// TimeoutErr builds a Timeout CloneError, optionally with an address.
func TimeoutErr(phase string, address int, hasAddress bool) *CloneError {
	return &CloneError{Kind: Timeout, Phase: phase, Address: address, HasAddress: hasAddress}
}

// ProtocolErr builds a ProtocolError CloneError.
func ProtocolErr(address int, observed, expected int) *CloneError {
	return &CloneError{Kind: ProtocolError, Address: address, HasAddress: true, Observed: observed, Expected: expected}
}

// WriteFailedErr builds a WriteFailed CloneError.
func WriteFailedErr(address int, ack int, hasAck bool) *CloneError {
	return &CloneError{Kind: WriteFailed, Address: address, HasAddress: true, Ack: ack, HasAck: hasAck}
}

// HandshakeFailedErr builds a HandshakeFailed CloneError.
func HandshakeFailedErr(reason string, lastResponse []byte) *CloneError {
	return &CloneError{Kind: HandshakeFailed, Reason: reason, LastResponse: lastResponse}
}

// CodecErr builds a CodecError CloneError.
func CodecErr(channelIndex int, field, reason string) *CloneError {
	return &CloneError{Kind: CodecError, ChannelIndex: channelIndex, Field: field, Reason: reason}
}

// CancelledErr builds a Cancelled CloneError.
func CancelledErr(phase string, bytesDone int64) *CloneError {
	return &CloneError{Kind: Cancelled, Phase: phase, BytesDone: bytesDone}
}
