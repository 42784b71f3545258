package serialmux

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

// ErrPortClosed is returned by TestableSerialPort after Close.
var ErrPortClosed = errors.New("serial port closed")

// TestableSerialPort implements SerialPorter over in-memory buffers. Reads
// drain the buffered data and then either block for more (BlockReads) or
// return io.EOF.
type TestableSerialPort struct {
	mu sync.Mutex

	readBuffer  bytes.Buffer
	writeBuffer bytes.Buffer

	// BlockReads makes Read wait for AddReadData or Close instead of
	// returning io.EOF on an empty buffer.
	BlockReads bool

	// WriteError is returned by the next Write call if set.
	WriteError error

	// ShortWrite makes Write report one byte fewer than it was given.
	ShortWrite bool

	closed   bool
	readCond *sync.Cond
}

// NewTestableSerialPort creates a port whose reads return data.
func NewTestableSerialPort(data string) *TestableSerialPort {
	t := &TestableSerialPort{}
	t.readBuffer.WriteString(data)
	t.readCond = sync.NewCond(&t.mu)
	return t
}

func (t *TestableSerialPort) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for t.BlockReads && !t.closed && t.readBuffer.Len() == 0 {
		t.readCond.Wait()
	}
	if t.closed {
		return 0, ErrPortClosed
	}
	if t.readBuffer.Len() == 0 {
		return 0, io.EOF
	}
	return t.readBuffer.Read(p)
}

func (t *TestableSerialPort) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrPortClosed
	}
	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		return 0, err
	}
	n, err := t.writeBuffer.Write(p)
	if t.ShortWrite && n > 0 {
		n--
	}
	return n, err
}

// Close marks the port closed and wakes blocked readers.
func (t *TestableSerialPort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.readCond.Broadcast()
	return nil
}

// AddReadData appends data for subsequent reads.
func (t *TestableSerialPort) AddReadData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readBuffer.WriteString(data)
	t.readCond.Broadcast()
}

// Written returns everything written to the port so far.
func (t *TestableSerialPort) Written() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writeBuffer.String()
}

// Closed reports whether Close was called.
func (t *TestableSerialPort) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
