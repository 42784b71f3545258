package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("discarded %d readings", 3)
	if got != "discarded 3 readings" {
		t.Errorf("custom logger got %q", got)
	}

	got = ""
	SetLogger(nil)
	Logf("should not reach the old logger")
	if got != "" {
		t.Errorf("no-op logger forwarded %q", got)
	}
}

func TestSetVerbose(t *testing.T) {
	original := Logf
	defer func() {
		Logf = original
		SetVerbose(false)
	}()

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	Debugf("hidden")
	if len(lines) != 0 {
		t.Fatalf("Debugf logged while quiet: %v", lines)
	}

	SetVerbose(true)
	if !Verbose() {
		t.Error("Verbose() = false after SetVerbose(true)")
	}
	Debugf("bucket %d", 360)
	if len(lines) != 1 || lines[0] != "[debug] bucket 360" {
		t.Errorf("unexpected debug output: %v", lines)
	}

	SetVerbose(false)
	Debugf("hidden again")
	if len(lines) != 1 {
		t.Errorf("Debugf logged after SetVerbose(false): %v", lines)
	}
}
