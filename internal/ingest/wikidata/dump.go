package wikidata

import (
	"compress/bzip2"
	"io"
	"os"
	"strings"

	apperrors "github.com/wildside/wildside/internal/pkg/errors"
)

// OpenDump opens the Wikidata dump at path, transparently wrapping it in a
// bzip2 reader when path ends in ".bz2". Callers must close the returned
// closer once done reading.
func OpenDump(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": path})
		}
		return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": path})
	}
	if !strings.HasSuffix(path, ".bz2") {
		return file, nil
	}
	return bzipReadCloser{Reader: bzip2.NewReader(file), inner: file}, nil
}

// bzipReadCloser adapts bzip2.NewReader's plain io.Reader to io.ReadCloser,
// closing the underlying file handle.
type bzipReadCloser struct {
	io.Reader
	inner *os.File
}

func (b bzipReadCloser) Close() error {
	return b.inner.Close()
}
