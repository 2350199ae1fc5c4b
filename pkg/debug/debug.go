// Package debug provides global debug logging flags
package debug

import (
	"fmt"
	"io"
	"os"
)

// Enabled controls whether debug logging is active
var Enabled bool

// Probe controls whether per-property hardware probe lines are shown.
// Use --debug-probe to enable these very verbose logs
var Probe bool

// Out is where debug lines go.
var Out io.Writer = os.Stdout

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Fprintf(Out, format, args...)
	}
}

// Logln prints a message with newline only if debug mode is enabled
func Logln(msg string) {
	if Enabled {
		fmt.Fprintln(Out, msg)
	}
}

// ProbeLog prints a message only if probe debug mode is enabled
func ProbeLog(format string, args ...interface{}) {
	if Probe {
		fmt.Fprintf(Out, format, args...)
	}
}
