// Package monitoring holds the diagnostic logger shared by the pipeline
// packages. Library code logs through Logf so that commands decide where the
// output goes and tests can mute it.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// Debugf logs only when verbose output has been enabled with SetVerbose.
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

var verbose bool

// Verbose reports whether debug output is enabled.
func Verbose() bool { return verbose }

// SetVerbose routes Debugf through the current Logf when on is true and
// silences it otherwise.
func SetVerbose(on bool) {
	verbose = on
	if !on {
		Debugf = func(string, ...interface{}) {}
		return
	}
	Debugf = func(format string, v ...interface{}) {
		Logf("[debug] "+format, v...)
	}
}
