package transport

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Serial reaches an RSP endpoint over a serial port, e.g. a debug probe
// that bridges its GDB server onto a UART instead of a TCP socket.
type Serial struct {
	device string
	mode   serial.Mode
	port   serial.Port
}

// NewSerial creates a serial transport for the named device (for example
// "/dev/ttyUSB0" or "COM3") at the given baud rate.
func NewSerial(device string, baudRate int) *Serial {
	return &Serial{
		device: device,
		mode: serial.Mode{
			BaudRate: baudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
	}
}

// Connect opens the serial port.
func (s *Serial) Connect() error {
	port, err := serial.Open(s.device, &s.mode)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.device, err)
	}
	s.port = port
	return nil
}

// Close releases the port. Safe to call multiple times.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

// Send writes all of data to the port.
func (s *Serial) Send(data []byte) error {
	if s.port == nil {
		return ErrNotConnected
	}
	// Serial writes can be short; keep going until everything is out.
	for len(data) > 0 {
		n, err := s.port.Write(data)
		if err != nil {
			return fmt.Errorf("write %s: %w", s.device, err)
		}
		data = data[n:]
	}
	return nil
}

// ReceiveExact reads exactly len(buf) bytes from the port.
func (s *Serial) ReceiveExact(buf []byte) error {
	if s.port == nil {
		return ErrNotConnected
	}
	if _, err := io.ReadFull(s.port, buf); err != nil {
		return fmt.Errorf("read %s: %w", s.device, err)
	}
	return nil
}
