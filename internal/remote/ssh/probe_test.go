package ssh

import (
	"context"
	"errors"
	"testing"
)

func TestExists(t *testing.T) {
	s := newTestSession()
	fs := newFakeFS()
	fs.files["/etc/hostname"] = []byte("host\n")
	installFS(s, fs)

	if !s.Exists(context.Background(), "/etc/hostname") {
		t.Error("expected true for a present path")
	}
	if s.Exists(context.Background(), "/etc/absent") {
		t.Error("expected false for a missing path")
	}
}

func TestExistsSwallowsErrors(t *testing.T) {
	s := newTestSession()
	fs := newFakeFS()
	fs.statErr = errors.New("connection reset")
	installFS(s, fs)

	if s.Exists(context.Background(), "/etc/hostname") {
		t.Error("expected false when the probe itself fails")
	}

	s.openFS = func() (fileSystem, error) { return nil, errors.New("handshake failed") }
	if s.Exists(context.Background(), "/etc/hostname") {
		t.Error("expected false when the transfer channel cannot open")
	}
}

func TestFindFirstWithPrefix(t *testing.T) {
	s := newTestSession()
	fs := newFakeFS()
	fs.dirs["/data"] = []string{"abc.txt", "abd.txt", "xyz.txt"}
	installFS(s, fs)

	name, ok := s.FindFirstWithPrefix(context.Background(), "/data", "ab")
	if !ok {
		t.Fatal("expected a match")
	}
	if name != "abc.txt" {
		t.Errorf("expected first match in listing order, got %q", name)
	}

	if _, ok := s.FindFirstWithPrefix(context.Background(), "/data", "qq"); ok {
		t.Error("expected no match for an unknown prefix")
	}
}

func TestFindFirstWithPrefixListingFailure(t *testing.T) {
	s := newTestSession()
	fs := newFakeFS()
	fs.readDirErr = errors.New("permission denied")
	installFS(s, fs)

	if _, ok := s.FindFirstWithPrefix(context.Background(), "/data", "ab"); ok {
		t.Error("expected false when the listing fails")
	}
}
