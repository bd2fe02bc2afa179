package ssh

import (
	"context"
	"strings"
)

// Exists reports whether the remote path exists. Any protocol error is
// swallowed and reported as false.
func (s *Session) Exists(ctx context.Context, remotePath string) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	fs, err := s.openFS()
	if err != nil {
		s.log.Debug("existence check failed", "path", remotePath, "error", err)
		return false
	}
	defer fs.Close()

	if _, err := fs.Stat(remotePath); err != nil {
		return false
	}
	return true
}

// FindFirstWithPrefix returns the first entry in the remote directory
// whose name starts with prefix, in the order returned by the remote
// listing. It reports ("", false) when nothing matches or the listing
// itself fails.
func (s *Session) FindFirstWithPrefix(ctx context.Context, remoteDir, prefix string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	default:
	}

	fs, err := s.openFS()
	if err != nil {
		s.log.Debug("directory listing failed", "dir", remoteDir, "error", err)
		return "", false
	}
	defer fs.Close()

	entries, err := fs.ReadDir(remoteDir)
	if err != nil {
		s.log.Debug("directory listing failed", "dir", remoteDir, "error", err)
		return "", false
	}

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			return entry.Name(), true
		}
	}
	return "", false
}
