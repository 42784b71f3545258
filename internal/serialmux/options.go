package serialmux

import (
	"cmp"
	"fmt"
	"strings"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the console speed of the rig's USB serial bridge.
const DefaultBaudRate = 115200

// PortOptions describes how the rig's port is opened. Zero values take the
// bridge's defaults: 115200 baud, 8 data bits, 1 stop bit, no parity.
type PortOptions struct {
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	StopBits int    `json:"stop_bits"`
	Parity   string `json:"parity"`
}

var parityCodes = map[string]string{
	"": "N", "N": "N", "NONE": "N",
	"E": "E", "EVEN": "E",
	"O": "O", "ODD": "O",
}

var serialParity = map[string]serial.Parity{
	"N": serial.NoParity,
	"E": serial.EvenParity,
	"O": serial.OddParity,
}

var serialStopBits = map[int]serial.StopBits{
	1: serial.OneStopBit,
	2: serial.TwoStopBits,
}

// Normalize fills in defaults and reduces Parity to N, E or O.
func (o PortOptions) Normalize() (PortOptions, error) {
	n := PortOptions{
		BaudRate: cmp.Or(o.BaudRate, DefaultBaudRate),
		DataBits: cmp.Or(o.DataBits, 8),
		StopBits: cmp.Or(o.StopBits, 1),
	}
	if n.BaudRate < 0 {
		n.BaudRate = DefaultBaudRate
	}
	if n.DataBits < 5 || n.DataBits > 8 {
		return n, fmt.Errorf("invalid data bits %d: must be between 5 and 8", n.DataBits)
	}
	if _, ok := serialStopBits[n.StopBits]; !ok {
		return n, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", n.StopBits)
	}
	code, ok := parityCodes[strings.ToUpper(strings.TrimSpace(o.Parity))]
	if !ok {
		return n, fmt.Errorf("unsupported parity %q: expected N, E, or O", o.Parity)
	}
	n.Parity = code
	return n, nil
}

// SerialMode converts the options into the go.bug.st/serial mode used to
// open a port.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	n, err := o.Normalize()
	if err != nil {
		return nil, err
	}
	return &serial.Mode{
		BaudRate: n.BaudRate,
		DataBits: n.DataBits,
		Parity:   serialParity[n.Parity],
		StopBits: serialStopBits[n.StopBits],
	}, nil
}
