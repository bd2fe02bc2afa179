package ssh

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/sftp"

	"github.com/remsh/remsh/internal/remote"
)

// fileSystem abstracts the file transfer channel so the classification
// logic can be exercised in tests.
type fileSystem interface {
	Create(path string) (io.WriteCloser, error)
	Open(path string) (io.ReadCloser, error)
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.FileInfo, error)
	Close() error
}

type sftpFS struct {
	client *sftp.Client
}

func (f *sftpFS) Create(p string) (io.WriteCloser, error) { return f.client.Create(p) }
func (f *sftpFS) Open(p string) (io.ReadCloser, error)    { return f.client.Open(p) }
func (f *sftpFS) Stat(p string) (os.FileInfo, error)      { return f.client.Stat(p) }
func (f *sftpFS) ReadDir(p string) ([]os.FileInfo, error) { return f.client.ReadDir(p) }
func (f *sftpFS) Close() error                            { return f.client.Close() }

// isNotExist reports whether err indicates a missing remote path.
func isNotExist(err error) bool {
	if errors.Is(err, os.ErrNotExist) || os.IsNotExist(err) {
		return true
	}
	var status *sftp.StatusError
	return errors.As(err, &status) && status.FxCode() == sftp.ErrSSHFxNoSuchFile
}

// Upload copies a local file into a remote folder under a new name. A
// missing local file or any transfer failure is reported as false, never
// as an error.
func (s *Session) Upload(ctx context.Context, localPath, remoteFolder, newName string) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	local, err := os.Open(localPath)
	if err != nil {
		s.log.Error("local file not found", "path", localPath, "error", err)
		return false
	}
	defer local.Close()

	fs, err := s.openFS()
	if err != nil {
		s.log.Error("failed to open transfer channel", "error", err)
		return false
	}
	defer fs.Close()

	remotePath := path.Join(remoteFolder, newName)
	dst, err := fs.Create(remotePath)
	if err != nil {
		s.log.Error("upload failed", "remote", remotePath, "error", err)
		return false
	}

	if _, err := io.Copy(dst, local); err != nil {
		dst.Close()
		s.log.Error("upload failed", "remote", remotePath, "error", err)
		return false
	}
	if err := dst.Close(); err != nil {
		s.log.Error("upload failed", "remote", remotePath, "error", err)
		return false
	}

	s.log.Info("uploaded file", "local", localPath, "remote", remotePath)
	return true
}

// Download copies a remote file into a local folder under a new name.
// A missing remote path fails with NotFoundError and any other protocol
// failure with TransferError. It reports true only if the local
// destination is confirmed present after the transfer.
func (s *Session) Download(ctx context.Context, remotePath, localFolder, newName string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, &remote.TransferError{Op: "download", Path: remotePath, Err: ctx.Err()}
	default:
	}

	fs, err := s.openFS()
	if err != nil {
		return false, &remote.TransferError{Op: "download", Path: remotePath, Err: err}
	}
	defer fs.Close()

	src, err := fs.Open(remotePath)
	if err != nil {
		if isNotExist(err) {
			s.log.Error("remote file not found", "path", remotePath)
			return false, &remote.NotFoundError{Path: remotePath, Err: err}
		}
		s.log.Error("download failed", "remote", remotePath, "error", err)
		return false, &remote.TransferError{Op: "download", Path: remotePath, Err: err}
	}
	defer src.Close()

	localPath := filepath.Join(localFolder, newName)
	dst, err := os.Create(localPath)
	if err != nil {
		return false, &remote.TransferError{Op: "download", Path: remotePath, Err: err}
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return false, &remote.TransferError{Op: "download", Path: remotePath, Err: err}
	}
	if err := dst.Close(); err != nil {
		return false, &remote.TransferError{Op: "download", Path: remotePath, Err: err}
	}

	// Success means a confirmed local artifact, not a clean protocol exchange.
	if _, err := os.Stat(localPath); err != nil {
		s.log.Error("download left no local artifact", "local", localPath)
		return false, nil
	}

	s.log.Info("downloaded file", "remote", remotePath, "local", localPath)
	return true, nil
}
