package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/remsh/remsh/internal/remote"
)

func newTestOutput() (*Output, *bytes.Buffer) {
	var buf bytes.Buffer
	o := New(&buf)
	o.SetColor(false)
	return o, &buf
}

func TestCommandResult(t *testing.T) {
	o, buf := newTestOutput()
	o.CommandResult("uptime", &remote.Result{Stdout: "up 3 days\n", ExitStatus: 0, Elapsed: 1})

	got := buf.String()
	if !strings.Contains(got, "✓ uptime (exit=0, 1s)") {
		t.Errorf("unexpected header line: %q", got)
	}
	if !strings.Contains(got, "  up 3 days\n") {
		t.Errorf("expected indented stdout, got %q", got)
	}
}

func TestCommandResultFailure(t *testing.T) {
	o, buf := newTestOutput()
	o.CommandResult("false", &remote.Result{ExitStatus: 1})

	got := buf.String()
	if !strings.Contains(got, "✗ false (exit=1, 0s)") {
		t.Errorf("expected failure marker, got %q", got)
	}
}

func TestDispatched(t *testing.T) {
	o, buf := newTestOutput()
	o.Dispatched("backup.sh", &remote.Result{ExitStatus: 0})

	if !strings.Contains(buf.String(), "✓ backup.sh (exit=0, dispatched)") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestTransferResult(t *testing.T) {
	o, buf := newTestOutput()
	o.TransferResult("upload", "a.txt", "/srv/a.txt", true)
	o.TransferResult("download", "/srv/b.txt", "b.txt", false)

	got := buf.String()
	if !strings.Contains(got, "✓ upload a.txt → /srv/a.txt") {
		t.Errorf("unexpected success line: %q", got)
	}
	if !strings.Contains(got, "✗ download /srv/b.txt → b.txt failed") {
		t.Errorf("unexpected failure line: %q", got)
	}
}

func TestProbe(t *testing.T) {
	o, buf := newTestOutput()
	o.Probe("/etc/hostname", true)
	o.Probe("/etc/absent", false)

	got := buf.String()
	if !strings.Contains(got, "✓ /etc/hostname") {
		t.Errorf("unexpected present line: %q", got)
	}
	if !strings.Contains(got, "○ /etc/absent") {
		t.Errorf("unexpected absent line: %q", got)
	}
}

func TestLeveledMessages(t *testing.T) {
	o, buf := newTestOutput()
	o.Info("connected to %s", "web1")
	o.Warn("flag %s ignored", "--terminate-on-timeout")
	o.Error("upload failed")

	got := buf.String()
	if !strings.Contains(got, "INFO connected to web1") {
		t.Errorf("unexpected info line: %q", got)
	}
	if !strings.Contains(got, "WARN flag --terminate-on-timeout ignored") {
		t.Errorf("unexpected warn line: %q", got)
	}
	if !strings.Contains(got, "ERROR upload failed") {
		t.Errorf("unexpected error line: %q", got)
	}
}

func TestDebugGated(t *testing.T) {
	o, buf := newTestOutput()
	o.Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("expected no debug output by default, got %q", buf.String())
	}

	o.SetDebug(true)
	o.Debug("shown %d", 2)
	if !strings.Contains(buf.String(), "DEBUG shown 2") {
		t.Errorf("expected debug output when enabled, got %q", buf.String())
	}
}

func TestColorCodes(t *testing.T) {
	var buf bytes.Buffer
	o := New(&buf)
	o.Info("hello")
	if !strings.Contains(buf.String(), "\033[34m") {
		t.Errorf("expected color codes when enabled, got %q", buf.String())
	}

	buf.Reset()
	o.SetColor(false)
	o.Info("hello")
	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("expected no color codes when disabled, got %q", buf.String())
	}
}
