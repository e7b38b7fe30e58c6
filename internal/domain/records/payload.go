package records

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// FilePayload is a Payload spooled to a temp file on local disk.
type FilePayload struct {
	path string
	size int64

	once sync.Once
	err  error
}

// Spool copies r into a new temp file under dir, reading at most limit bytes
// when limit > 0. Exceeding the limit is an ErrInvalidInput.
func Spool(r io.Reader, dir string, limit int64) (*FilePayload, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	f, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp upload: %w", err)
	}
	p := &FilePayload{path: f.Name()}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = p.Release()
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	if limit > 0 && n > limit {
		_ = p.Release()
		return nil, fmt.Errorf("%w: upload exceeds %d bytes", ErrInvalidInput, limit)
	}
	p.size = n
	return p, nil
}

// Path of the temp file on disk.
func (p *FilePayload) Path() string { return p.path }

func (p *FilePayload) Size() int64 { return p.size }

func (p *FilePayload) Bytes() ([]byte, error) {
	return os.ReadFile(p.path)
}

// Release removes the temp file; a missing file is not an error.
func (p *FilePayload) Release() error {
	p.once.Do(func() {
		if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.err = err
		}
	})
	return p.err
}
