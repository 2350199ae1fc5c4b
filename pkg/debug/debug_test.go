package debug

import (
	"bytes"
	"testing"
)

func TestLog_RespectsFlags(t *testing.T) {
	var buf bytes.Buffer
	oldOut, oldEnabled, oldProbe := Out, Enabled, Probe
	t.Cleanup(func() { Out, Enabled, Probe = oldOut, oldEnabled, oldProbe })
	Out = &buf

	Enabled = false
	Probe = false
	Log("a %d\n", 1)
	Logln("b")
	ProbeLog("c\n")
	if buf.Len() != 0 {
		t.Fatalf("expected no output when disabled, got %q", buf.String())
	}

	Enabled = true
	Log("a %d\n", 1)
	Logln("b")
	ProbeLog("c\n")
	if got := buf.String(); got != "a 1\nb\n" {
		t.Errorf("got %q, want %q", got, "a 1\nb\n")
	}

	Probe = true
	ProbeLog("c\n")
	if got := buf.String(); got != "a 1\nb\nc\n" {
		t.Errorf("got %q, want probe line appended", got)
	}
}
