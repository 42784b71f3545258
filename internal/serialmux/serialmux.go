// Package serialmux reads newline-delimited output from the rig's serial
// bridge and fans each line out to any number of subscribers. Commands can
// be written back to the bridge while it is being monitored.
package serialmux

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrWriteFailed = errors.New("failed to write to serial port")

// SubscriberBuffer is the channel capacity given to each subscriber. Lines
// that arrive while a subscriber's buffer is full are dropped for that
// subscriber and counted.
const SubscriberBuffer = 1024

// SerialMux multiplexes the lines read from one port.
type SerialMux[T SerialPorter] struct {
	port T

	mu          sync.Mutex
	subscribers map[string]chan string
	dropped     int
	closed      bool

	writeMu sync.Mutex
}

// NewSerialMux creates a SerialMux over an already opened port.
func NewSerialMux[T SerialPorter](port T) *SerialMux[T] {
	return &SerialMux[T]{
		port:        port,
		subscribers: make(map[string]chan string),
	}
}

// Subscribe creates a new channel for receiving lines. The returned ID is
// passed to Unsubscribe. After Close the channel comes back already closed.
func (s *SerialMux[T]) Subscribe() (string, chan string) {
	id := uuid.NewString()
	ch := make(chan string, SubscriberBuffer)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return id, ch
	}
	s.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (s *SerialMux[T]) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subscribers[id]; ok {
		close(ch)
		delete(s.subscribers, id)
	}
}

// Dropped returns how many line deliveries were skipped because a
// subscriber was not keeping up.
func (s *SerialMux[T]) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// SendCommand writes command to the port, adding a trailing newline if
// missing.
func (s *SerialMux[T]) SendCommand(command string) error {
	if !strings.HasSuffix(command, "\n") {
		command += "\n"
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	n, err := s.port.Write([]byte(command))
	if err != nil {
		return err
	}
	if n != len(command) {
		return ErrWriteFailed
	}
	return nil
}

// scanned is one step of the reader goroutine: a line, or the error that
// ended the stream.
type scanned struct {
	line string
	err  error
}

// Monitor reads lines until the port reports EOF, a read fails, or ctx is
// cancelled. EOF returns nil; cancellation returns ctx.Err(). Carriage
// returns left by CRLF line endings are removed and blank lines skipped.
func (s *SerialMux[T]) Monitor(ctx context.Context) error {
	steps := make(chan scanned)

	// The reader runs separately so that a blocking read cannot hold up
	// cancellation.
	go func() {
		defer close(steps)
		sc := bufio.NewScanner(s.port)
		for sc.Scan() {
			select {
			case steps <- scanned{line: sc.Text()}:
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			select {
			case steps <- scanned{err: err}:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st, ok := <-steps:
			switch {
			case !ok:
				return nil
			case st.err != nil:
				return st.err
			}
			line := strings.TrimRight(st.line, "\r")
			if line == "" {
				continue
			}
			if !s.broadcast(line) {
				return nil
			}
		}
	}
}

// broadcast delivers line to every subscriber and reports false once the
// mux has been closed.
func (s *SerialMux[T]) broadcast(line string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	for _, ch := range s.subscribers {
		select {
		case ch <- line:
		default:
			s.dropped++
		}
	}
	return true
}

// Close closes all subscriber channels and then the port.
func (s *SerialMux[T]) Close() error {
	s.mu.Lock()
	s.closed = true
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	s.mu.Unlock()
	return s.port.Close()
}
