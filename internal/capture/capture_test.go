package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/reflectivity.report/internal/fsutil"
	"github.com/banshee-data/reflectivity.report/internal/monitoring"
	"github.com/banshee-data/reflectivity.report/internal/rawlog"
	"github.com/banshee-data/reflectivity.report/internal/rotation"
	"github.com/banshee-data/reflectivity.report/internal/serialmux"
)

func quiet(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })
}

func readBack(t *testing.T, mfs *fsutil.MemoryFileSystem, path string) []rotation.Sample {
	t.Helper()
	f, err := mfs.Open(path)
	require.NoError(t, err)
	defer f.Close()
	samples, err := rawlog.Read(f)
	require.NoError(t, err)
	return samples
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want rotation.Sample
		kind LineKind
	}{
		{"120,43", rotation.Sample{Angle: 120, Reflectivity: 43}, LineSample},
		{" 725.5 , 12 ", rotation.Sample{Angle: 725.5, Reflectivity: 12}, LineSample},
		{"Angle: 90 degrees, Reflectivity: 38%", rotation.Sample{Angle: 90, Reflectivity: 38}, LineSample},
		{"angle: -4 degrees, reflectivity: 7", rotation.Sample{Angle: -4, Reflectivity: 7}, LineSample},
		{"END", rotation.Sample{}, LineEnd},
		{" end ", rotation.Sample{}, LineEnd},
		{"", rotation.Sample{}, LineIgnored},
		{"angle, reflectivity", rotation.Sample{}, LineIgnored},
		{"1,2,3", rotation.Sample{}, LineIgnored},
		{"False", rotation.Sample{}, LineIgnored},
		{"12,x", rotation.Sample{}, LineIgnored},
		{"NaN,4", rotation.Sample{}, LineIgnored},
		{"30,+Inf", rotation.Sample{}, LineIgnored},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, kind := ParseLine(tt.line)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionsFileName(t *testing.T) {
	name, err := Options{Name: "train", Label: "7"}.FileName()
	require.NoError(t, err)
	assert.Equal(t, "train7.csv", name)

	_, err = Options{Name: "../train", Label: "7"}.FileName()
	assert.Error(t, err)
}

func TestRunStopsAtEndMarker(t *testing.T) {
	quiet(t)
	port := serialmux.NewTestableSerialPort(
		"False\nangle, reflectivity\n0,41\nAngle: 10 degrees, Reflectivity: 43%\nEND\n20,50\n")
	mux := serialmux.NewSerialMux(port)
	mfs := fsutil.NewMemoryFileSystem()

	res, err := Run(context.Background(), mux, mfs, Options{OutDir: "/raw", Name: "train", Label: "3"})
	require.NoError(t, err)
	assert.Equal(t, "/raw/train3.csv", res.Path)
	assert.Equal(t, 2, res.Samples)
	assert.Equal(t, 2, res.Ignored)
	assert.Equal(t, StoppedAtEnd, res.Reason)

	assert.Equal(t, []rotation.Sample{{Angle: 0, Reflectivity: 41}, {Angle: 10, Reflectivity: 43}}, readBack(t, mfs, res.Path))
}

func TestRunKeepsSamplesWhenStreamEnds(t *testing.T) {
	quiet(t)
	mux := serialmux.NewSerialMux(serialmux.NewTestableSerialPort("0,41\n10,42\n20,40\n"))
	mfs := fsutil.NewMemoryFileSystem()

	res, err := Run(context.Background(), mux, mfs, Options{OutDir: "/raw", Name: "train", Label: "1"})
	require.NoError(t, err)
	assert.Equal(t, StoppedStreamEnded, res.Reason)
	assert.Equal(t, 3, res.Samples)
	assert.Len(t, readBack(t, mfs, res.Path), 3)
}

func TestRunSampleLimit(t *testing.T) {
	quiet(t)
	mux := serialmux.NewSerialMux(serialmux.NewTestableSerialPort("0,1\n10,2\n20,3\n30,4\n"))
	mfs := fsutil.NewMemoryFileSystem()

	res, err := Run(context.Background(), mux, mfs, Options{OutDir: "/raw", Name: "log", MaxSamples: 2})
	require.NoError(t, err)
	assert.Equal(t, StoppedLimit, res.Reason)
	assert.Equal(t, 2, res.Samples)
	assert.Equal(t, "/raw/log.csv", res.Path)
}

func TestRunSendsStartCommand(t *testing.T) {
	quiet(t)
	port := serialmux.NewTestableSerialPort("END\n")
	mux := serialmux.NewSerialMux(port)

	_, err := Run(context.Background(), mux, fsutil.NewMemoryFileSystem(),
		Options{OutDir: "/raw", Name: "train", Label: "0", StartCommand: "GO"})
	require.NoError(t, err)
	assert.Equal(t, "GO\n", port.Written())
}

func TestRunFailedStartLeavesNoLog(t *testing.T) {
	quiet(t)
	port := serialmux.NewTestableSerialPort("")
	port.BlockReads = true
	port.WriteError = errors.New("bridge unplugged")
	mux := serialmux.NewSerialMux(port)
	mfs := fsutil.NewMemoryFileSystem()

	_, err := Run(context.Background(), mux, mfs,
		Options{OutDir: "/raw", Name: "train", Label: "4", StartCommand: "GO"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bridge unplugged")
	assert.False(t, mfs.Exists("/raw/train4.csv"))
	require.NoError(t, port.Close())
}

func TestRunCancelled(t *testing.T) {
	quiet(t)
	port := serialmux.NewTestableSerialPort("")
	port.BlockReads = true
	mux := serialmux.NewSerialMux(port)
	t.Cleanup(func() { mux.Close() })
	mfs := fsutil.NewMemoryFileSystem()

	ctx, cancel := context.WithCancel(context.Background())
	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := Run(ctx, mux, mfs, Options{OutDir: "/raw", Name: "train", Label: "9"})
		done <- outcome{res, err}
	}()

	port.AddReadData("0,10\n10,11\n")
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case o := <-done:
		require.NoError(t, o.err)
		assert.Equal(t, StoppedCancelled, o.res.Reason)
		assert.LessOrEqual(t, o.res.Samples, 2)
		assert.Len(t, readBack(t, mfs, o.res.Path), o.res.Samples)
	case <-time.After(2 * time.Second):
		t.Fatal("capture did not stop after cancel")
	}
}

func TestRunRejectsBadName(t *testing.T) {
	mux := serialmux.NewSerialMux(serialmux.NewTestableSerialPort(""))
	_, err := Run(context.Background(), mux, fsutil.NewMemoryFileSystem(), Options{OutDir: "/raw", Name: "a/b"})
	assert.Error(t, err)
}
