package facts

import (
	"context"
	"fmt"
	"testing"

	"github.com/remsh/remsh/internal/remote"
)

// scriptedSession answers commands from a canned map.
type scriptedSession struct {
	responses map[string]string
}

func (s *scriptedSession) Execute(ctx context.Context, command string, opts ...remote.ExecOption) (*remote.Result, error) {
	out, ok := s.responses[command]
	if !ok {
		return nil, &remote.ExecError{Command: command, Err: fmt.Errorf("unscripted command")}
	}
	return &remote.Result{Stdout: out}, nil
}

func (s *scriptedSession) Upload(ctx context.Context, localPath, remoteFolder, newName string) bool {
	return false
}

func (s *scriptedSession) Download(ctx context.Context, remotePath, localFolder, newName string) (bool, error) {
	return false, nil
}

func (s *scriptedSession) Exists(ctx context.Context, remotePath string) bool { return false }

func (s *scriptedSession) FindFirstWithPrefix(ctx context.Context, remoteDir, prefix string) (string, bool) {
	return "", false
}

func (s *scriptedSession) Close() error { return nil }

func (s *scriptedSession) String() string { return "scripted" }

func TestGatherLinux(t *testing.T) {
	sess := &scriptedSession{responses: map[string]string{
		"uname -s": "Linux\n",
		"uname -m": "x86_64\n",
		"uname -r": "6.8.0-45-generic\n",
		"cat /etc/os-release 2>/dev/null": `NAME="Ubuntu"
VERSION_ID="24.04"
ID=ubuntu
PRETTY_NAME="Ubuntu 24.04.1 LTS"
`,
		"hostname":   "web1\n",
		"whoami":     "deploy\n",
		"echo $HOME": "/home/deploy\n",
	}}

	facts, err := Gather(context.Background(), sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]any{
		"os_type":              "Linux",
		"os_family":            "Linux",
		"distribution":         "ubuntu",
		"distribution_version": "24.04",
		"os_name":              "Ubuntu 24.04.1 LTS",
		"architecture":         "x86_64",
		"arch":                 "amd64",
		"kernel":               "6.8.0-45-generic",
		"hostname":             "web1",
		"user":                 "deploy",
		"home":                 "/home/deploy",
	}
	for k, v := range want {
		if facts[k] != v {
			t.Errorf("fact %s: expected %v, got %v", k, v, facts[k])
		}
	}
}

func TestGatherDarwin(t *testing.T) {
	sess := &scriptedSession{responses: map[string]string{
		"uname -s":                "Darwin\n",
		"uname -m":                "arm64\n",
		"uname -r":                "24.0.0\n",
		"sw_vers -productVersion": "15.1\n",
		"hostname":                "mac1\n",
		"whoami":                  "dev\n",
		"echo $HOME":              "/Users/dev\n",
	}}

	facts, err := Gather(context.Background(), sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if facts["os_family"] != "Darwin" {
		t.Errorf("expected Darwin family, got %v", facts["os_family"])
	}
	if facts["os_version"] != "15.1" {
		t.Errorf("expected os_version 15.1, got %v", facts["os_version"])
	}
	if facts["arch"] != "arm64" {
		t.Errorf("expected arch arm64, got %v", facts["arch"])
	}
}

func TestGatherToleratesFailures(t *testing.T) {
	sess := &scriptedSession{responses: map[string]string{
		"hostname": "bare\n",
	}}

	facts, err := Gather(context.Background(), sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if facts["hostname"] != "bare" {
		t.Errorf("expected hostname fact, got %v", facts["hostname"])
	}
	if _, ok := facts["os_type"]; ok {
		t.Error("expected no os_type fact when probing fails")
	}
}

func TestParseOSRelease(t *testing.T) {
	content := `
# comment line
NAME="Debian GNU/Linux"
ID=debian
VERSION_ID='12'

EMPTY=
`
	got := parseOSRelease(content)
	if got["NAME"] != "Debian GNU/Linux" {
		t.Errorf("expected quotes stripped, got %q", got["NAME"])
	}
	if got["ID"] != "debian" {
		t.Errorf("expected bare value, got %q", got["ID"])
	}
	if got["VERSION_ID"] != "12" {
		t.Errorf("expected single quotes stripped, got %q", got["VERSION_ID"])
	}
	if got["EMPTY"] != "" {
		t.Errorf("expected empty value, got %q", got["EMPTY"])
	}
}
