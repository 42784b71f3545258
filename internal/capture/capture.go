// Package capture records samples streamed by the rig over a serial link
// into a raw log that the cleaning pipeline can read.
package capture

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/reflectivity.report/internal/fsutil"
	"github.com/banshee-data/reflectivity.report/internal/monitoring"
	"github.com/banshee-data/reflectivity.report/internal/rawlog"
	"github.com/banshee-data/reflectivity.report/internal/security"
)

// Source is the part of serialmux.SerialMux that capture needs.
type Source interface {
	Subscribe() (string, chan string)
	Unsubscribe(string)
	SendCommand(string) error
	Monitor(context.Context) error
}

// Options configures one capture.
type Options struct {
	OutDir string
	// Name is the log's base name; Label, the digit on the platform, is
	// appended to it so that "train" and "7" give "train7.csv".
	Name  string
	Label string
	// StartCommand, when set, is written to the device once listening.
	StartCommand string
	// MaxSamples stops the capture after that many samples. Zero means no
	// limit.
	MaxSamples int
}

// FileName returns the raw log file name the options produce.
func (o Options) FileName() (string, error) {
	name := o.Name + o.Label + ".csv"
	if err := security.ValidateSourceName(name); err != nil {
		return "", err
	}
	return name, nil
}

// StopReason records why a capture ended.
type StopReason string

const (
	StoppedAtEnd       StopReason = "end_marker"
	StoppedStreamEnded StopReason = "stream_ended"
	StoppedCancelled   StopReason = "cancelled"
	StoppedLimit       StopReason = "sample_limit"
)

// Result describes a finished capture.
type Result struct {
	Path    string
	Samples int
	Ignored int
	Reason  StopReason
}

// Run listens on src, writing every sample line to OutDir/<Name><Label>.csv
// until the end marker, the end of the stream, the sample limit, or ctx
// cancellation. The samples received so far are kept in every case.
func Run(ctx context.Context, src Source, fs fsutil.FileSystem, opts Options) (*Result, error) {
	name, err := opts.FileName()
	if err != nil {
		return nil, err
	}
	if err := fs.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", opts.OutDir, err)
	}
	path := filepath.Join(opts.OutDir, name)
	if err := security.ValidatePathWithinDirectory(path, opts.OutDir); err != nil {
		return nil, err
	}

	id, lines := src.Subscribe()
	defer src.Unsubscribe(id)

	monCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	monErr := make(chan error, 1)
	go func() { monErr <- src.Monitor(monCtx) }()

	// The log is created only once the rig has been started, so a failed
	// start leaves no header-only file for the cleaner to pick up. Lines
	// arriving meanwhile wait in the subscription buffer.
	if opts.StartCommand != "" {
		if err := src.SendCommand(opts.StartCommand); err != nil {
			return nil, fmt.Errorf("failed to send start command: %w", err)
		}
	}

	f, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create raw log: %w", err)
	}
	lw := rawlog.NewWriter(f)
	if err := lw.WriteHeader(); err != nil {
		f.Close()
		return nil, err
	}

	res := &Result{Path: path}
	handle := func(line string) (bool, error) {
		s, kind := ParseLine(line)
		switch kind {
		case LineEnd:
			res.Reason = StoppedAtEnd
			return true, nil
		case LineSample:
			if err := lw.Log(s); err != nil {
				return true, err
			}
			res.Samples++
			if opts.MaxSamples > 0 && res.Samples >= opts.MaxSamples {
				res.Reason = StoppedLimit
				return true, nil
			}
		default:
			res.Ignored++
			monitoring.Debugf("capture: ignoring line %q", line)
		}
		return false, nil
	}

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			res.Reason = StoppedCancelled
			break loop

		case line, ok := <-lines:
			if !ok {
				res.Reason = StoppedStreamEnded
				break loop
			}
			done, err := handle(line)
			if err != nil {
				runErr = err
				break loop
			}
			if done {
				break loop
			}

		case err := <-monErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				runErr = fmt.Errorf("serial monitor: %w", err)
			}
			res.Reason = StoppedStreamEnded
			if ctx.Err() != nil {
				res.Reason = StoppedCancelled
			}
			// Lines already delivered are still buffered.
			for drained := false; !drained; {
				select {
				case line, ok := <-lines:
					if !ok {
						drained = true
						continue
					}
					done, err := handle(line)
					if err != nil && runErr == nil {
						runErr = err
					}
					drained = done || err != nil
				default:
					drained = true
				}
			}
			break loop
		}
	}

	if err := f.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to close raw log: %w", err)
	}
	monitoring.Logf("captured %d samples to %s (%s, %d lines ignored)", res.Samples, res.Path, res.Reason, res.Ignored)
	if runErr != nil {
		return res, runErr
	}
	return res, nil
}
