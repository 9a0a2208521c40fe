// Package safefile wraps the file reads done on user-supplied upload
// paths. Uploaded log files come from untrusted sources, so every read
// refuses symlinks and carries an explicit size ceiling.
package safefile

import (
	"fmt"
	"io"
	"os"
)

// Stat returns file info for path, refusing symbolic links. Lstat is
// used so the check cannot be bypassed through the link target.
func Stat(path string) (os.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("%s is a symbolic link (rejected)", path)
	}
	return info, nil
}

// ReadPrefix reads at most n bytes from the start of path, refusing
// symlinks. Used for attaching text previews to accepted uploads.
func ReadPrefix(path string, n int) ([]byte, error) {
	if _, err := Stat(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:read], nil
}
