package device

import (
	"fmt"

	"go.bug.st/serial"
)

// OpenSerial opens address at baud, 8N1, with the fixed read timeout.
func OpenSerial(address string, baud int) (Port, error) {
	p, err := serial.Open(address, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", address, err)
	}
	if err := p.SetReadTimeout(ReadTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", address, err)
	}
	return p, nil
}
