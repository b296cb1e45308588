package report

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// OutputWriter is a created output file plus whatever gzip layer wraps it,
// ready for WriteTabular/Render+Write. Close flushes the gzip layer (if
// any) before closing the underlying file.
type OutputWriter struct {
	io.Writer
	file *os.File
	gz   *gzip.Writer
}

// CreateOutput opens path for writing, transparently gzip-compressing
// everything written through the returned writer when path ends in ".gz"
// (spec.md §6: "Paths ending .gz are transparently gzip-compressed on
// write"), matching pkg/problemlog's use of the same klauspost/compress
// package for the same convention.
func CreateOutput(path string) (*OutputWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(path, ".gz") {
		return &OutputWriter{Writer: f, file: f}, nil
	}

	gz := gzip.NewWriter(f)
	return &OutputWriter{Writer: gz, file: f, gz: gz}, nil
}

func (o *OutputWriter) Close() error {
	if o.gz != nil {
		if err := o.gz.Close(); err != nil {
			o.file.Close()
			return err
		}
	}
	return o.file.Close()
}
