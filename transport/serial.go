package transport

import (
	"bytes"
	"time"

	"go.bug.st/serial"

	"github.com/vicholz/chirp-web/radioerr"
)

// SerialOpener opens real USB-serial ports by device path (e.g. "/dev/ttyUSB0",
// "COM3"). It is the production Opener.
type SerialOpener struct {
	Port string
}

// Open implements Opener.
func (o SerialOpener) Open(settings Settings) (ByteTransport, error) {
	mode := &serial.Mode{
		BaudRate: settings.Baud,
		DataBits: settings.DataBits,
		StopBits: stopBits(settings.StopBits),
		Parity:   parity(settings.Parity),
	}
	port, err := serial.Open(o.Port, mode)
	if err != nil {
		if pe, ok := err.(*serial.PortError); ok && pe.Code() == serial.PortNotFound {
			return nil, &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: err.Error(), Cause: err}
		}
		if pe, ok := err.(*serial.PortError); ok && pe.Code() == serial.PermissionDenied {
			return nil, &radioerr.CloneError{Kind: radioerr.PermissionDenied, Reason: err.Error(), Cause: err}
		}
		return nil, &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: err.Error(), Cause: err}
	}
	if err := port.SetDTR(settings.DTR); err != nil {
		port.Close()
		return nil, &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: "set DTR: " + err.Error(), Cause: err}
	}
	if err := port.SetRTS(settings.RTS); err != nil {
		port.Close()
		return nil, &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: "set RTS: " + err.Error(), Cause: err}
	}
	return &Serial{port: port}, nil
}

func stopBits(n int) serial.StopBits {
	if n == 2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}

func parity(p Parity) serial.Parity {
	switch p {
	case ParityOdd:
		return serial.OddParity
	case ParityEven:
		return serial.EvenParity
	default:
		return serial.NoParity
	}
}

// Serial is the production ByteTransport backed by go.bug.st/serial.
type Serial struct {
	port serial.Port
}

// Write implements ByteTransport.
func (s *Serial) Write(buf []byte) error {
	_, err := s.port.Write(buf)
	if err != nil {
		return &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: err.Error(), Cause: err}
	}
	return nil
}

// ReadExact implements ByteTransport.
func (s *Serial) ReadExact(n int, deadline time.Duration) ([]byte, error) {
	out := make([]byte, 0, n)
	deadlineAt := time.Now().Add(deadline)
	buf := make([]byte, n)
	for len(out) < n {
		remaining := time.Until(deadlineAt)
		if remaining <= 0 {
			return nil, radioerr.TimeoutErr("read_exact", 0, false)
		}
		if err := s.port.SetReadTimeout(remaining); err != nil {
			return nil, &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: err.Error(), Cause: err}
		}
		nr, err := s.port.Read(buf[:n-len(out)])
		if err != nil {
			return nil, &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: err.Error(), Cause: err}
		}
		if nr == 0 {
			return nil, radioerr.TimeoutErr("read_exact", 0, false)
		}
		out = append(out, buf[:nr]...)
	}
	return out, nil
}

// ReadAvailable implements ByteTransport.
func (s *Serial) ReadAvailable(max int, deadline time.Duration) ([]byte, error) {
	if err := s.port.SetReadTimeout(deadline); err != nil {
		return nil, &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: err.Error(), Cause: err}
	}
	buf := make([]byte, max)
	n, err := s.port.Read(buf)
	if err != nil {
		return nil, &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: err.Error(), Cause: err}
	}
	return buf[:n], nil
}

// ReadUntil implements ByteTransport.
func (s *Serial) ReadUntil(suffix []byte, deadline time.Duration) ([]byte, error) {
	var acc []byte
	deadlineAt := time.Now().Add(deadline)
	one := make([]byte, 1)
	for {
		remaining := time.Until(deadlineAt)
		if remaining <= 0 {
			return nil, radioerr.TimeoutErr("read_until", 0, false)
		}
		if err := s.port.SetReadTimeout(remaining); err != nil {
			return nil, &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: err.Error(), Cause: err}
		}
		n, err := s.port.Read(one)
		if err != nil {
			return nil, &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: err.Error(), Cause: err}
		}
		if n == 0 {
			return nil, radioerr.TimeoutErr("read_until", 0, false)
		}
		acc = append(acc, one[0])
		if bytes.HasSuffix(acc, suffix) {
			return acc, nil
		}
	}
}

// SetSignals implements ByteTransport.
func (s *Serial) SetSignals(dtr, rts bool) error {
	if err := s.port.SetDTR(dtr); err != nil {
		return &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: err.Error(), Cause: err}
	}
	if err := s.port.SetRTS(rts); err != nil {
		return &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: err.Error(), Cause: err}
	}
	return nil
}

// Close implements ByteTransport.
func (s *Serial) Close() error {
	if err := s.port.Close(); err != nil {
		return &radioerr.CloneError{Kind: radioerr.PortUnavailable, Reason: err.Error(), Cause: err}
	}
	return nil
}
