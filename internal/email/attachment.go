package email

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Attachment represents a non-text part of an MMS message. The payload is
// held in memory (Content) or, when the decoder spilled it, on disk (Path).
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
	Path        string
}

// Bytes returns the attachment payload, reading it from disk if needed.
func (a *Attachment) Bytes() ([]byte, error) {
	if a.Path == "" {
		return a.Content, nil
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment %q: %w", a.Filename, err)
	}
	return data, nil
}

// Size returns the payload length in bytes.
func (a *Attachment) Size() int64 {
	if a.Path == "" {
		return int64(len(a.Content))
	}
	info, err := os.Stat(a.Path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Release frees the payload. Removing an already removed file is not an error.
func (a *Attachment) Release() error {
	a.Content = nil
	if a.Path == "" {
		return nil
	}
	path := a.Path
	a.Path = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release attachment %q: %w", a.Filename, err)
	}
	return nil
}

// Clone returns a copy that owns its own payload. Disk-backed payloads are
// copied to a new file next to the original.
func (a *Attachment) Clone() (Attachment, error) {
	c := *a
	if a.Path == "" {
		if a.Content != nil {
			c.Content = append([]byte(nil), a.Content...)
		}
		return c, nil
	}

	src, err := os.Open(a.Path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to open attachment %q: %w", a.Filename, err)
	}
	defer src.Close()

	dstPath := filepath.Join(filepath.Dir(a.Path), uuid.NewString()+filepath.Ext(a.Path))
	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to create attachment copy: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return Attachment{}, fmt.Errorf("failed to copy attachment %q: %w", a.Filename, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return Attachment{}, fmt.Errorf("failed to copy attachment %q: %w", a.Filename, err)
	}
	c.Path = dstPath
	return c, nil
}
