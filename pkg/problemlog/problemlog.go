// Package problemlog implements the problem-read log writer (spec.md §6,
// component Q): a lazily-opened, gzip-compressed per-bucket side file
// recording every record the classifier could not place with confidence.
package problemlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/parkerlab/ataqv-go/pkg/ataqverr"
)

// Writer owns one gzip-compressed file per bucket, each opened on its
// first LogProblem call rather than up front, since most runs produce no
// problem reads at all for most buckets.
type Writer struct {
	dir string

	mu    sync.Mutex
	files map[string]*bucketFile
}

type bucketFile struct {
	file *os.File
	gz   *gzip.Writer
	bw   *bufio.Writer
}

// New creates a Writer whose per-bucket files are named
// "<dir>/<bucket>.problems.gz" (spec.md §6: "<bucket>.problems, gzipped";
// the .gz suffix makes the transparent-compression convention explicit in
// the filename itself, matching spec.md §6's "paths ending .gz are
// transparently gzip-compressed on write").
func New(dir string) *Writer {
	return &Writer{dir: dir, files: make(map[string]*bucketFile)}
}

// LogProblem appends one "CATEGORY\tRECORD_TEXT" line to bucket's problem
// log, opening the file on first use. It takes the bucket name as an extra
// argument; BucketLogger wraps it as a classify.ProblemLogger.
func (w *Writer) LogProblem(bucket, category, recordText string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	bf, ok := w.files[bucket]
	if !ok {
		var err error
		bf, err = w.open(bucket)
		if err != nil {
			// Problem logging is diagnostic, not load-bearing (spec.md §7:
			// per-record handling never escalates to a fatal error); drop
			// the line rather than abort the run.
			return
		}
		w.files[bucket] = bf
	}

	fmt.Fprintf(bf.bw, "%s\t%s\n", category, recordText)
}

func (w *Writer) open(bucket string) (*bucketFile, error) {
	path := filepath.Join(w.dir, bucket+".problems.gz")
	f, err := os.Create(path)
	if err != nil {
		return nil, ataqverr.Wrap(ataqverr.FileOpen, path, err)
	}
	gz := gzip.NewWriter(f)
	return &bucketFile{file: f, gz: gz, bw: bufio.NewWriter(gz)}, nil
}

// Close flushes and closes every bucket file that was opened.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	for _, bf := range w.files {
		if err := bf.bw.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := bf.gz.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := bf.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BucketLogger adapts Writer to classify.ProblemLogger for one specific
// bucket, since the classifier's interface carries no bucket name of its
// own.
type BucketLogger struct {
	Writer *Writer
	Bucket string
}

func (b BucketLogger) LogProblem(category, recordText string) {
	b.Writer.LogProblem(b.Bucket, category, recordText)
}
