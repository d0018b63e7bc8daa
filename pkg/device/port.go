package device

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Port is the byte stream a Serial reads records from.
// serial.Port satisfies it.
type Port interface {
	io.ReadCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Opener opens the named port at the given speed.
type Opener func(name string, baudRate int) (Port, error)

// Info describes an enumerated serial port.
type Info struct {
	Name        string
	Description string
}

// Label returns the text shown in port pickers.
func (i Info) Label() string {
	if i.Description == "" || i.Description == i.Name {
		return i.Name
	}
	return fmt.Sprintf("%s (%s)", i.Name, i.Description)
}

// OpenSerial opens a hardware serial port in 8N1 mode.
func OpenSerial(name string, baudRate int) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// Ports returns a list of available serial ports.
// USB adapters are described by product name or VID:PID when the OS reports them.
func Ports() ([]Info, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		result := make([]Info, 0, len(details))
		for _, d := range details {
			result = append(result, Info{
				Name:        d.Name,
				Description: describe(d),
			})
		}
		return result, nil
	}

	// Detailed enumeration is not available everywhere, fall back to names only
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Info, 0, len(names))
	for _, name := range names {
		result = append(result, Info{Name: name, Description: name})
	}
	return result, nil
}

func describe(d *enumerator.PortDetails) string {
	if !d.IsUSB {
		return d.Name
	}
	if d.Product != "" {
		return d.Product
	}
	return fmt.Sprintf("USB %s:%s", d.VID, d.PID)
}
