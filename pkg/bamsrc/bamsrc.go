// Package bamsrc wraps github.com/biogo/hts/bam to provide the two things
// spec.md §6 assumes an external collaborator supplies: a streaming decoder
// yielding records in file order (Phase 1), and a position-indexed cursor
// answering (ref_id, [start, end)) range queries (Phase 2).
package bamsrc

import (
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/parkerlab/ataqv-go/pkg/ataqverr"
)

// Source streams decoded records from a BAM file in file order.
type Source struct {
	path   string
	file   *os.File
	reader *bam.Reader
}

// Open opens path for streaming decode. The concurrency parameter matches
// bam.NewReader's own decompression-worker count; the collector passes 1,
// since Phase 1 is a single producer-consumer pipeline with no intra-phase
// parallelism (spec.md §5).
func Open(path string, decompressWorkers int) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ataqverr.Wrap(ataqverr.FileOpen, path, err)
	}
	r, err := bam.NewReader(f, decompressWorkers)
	if err != nil {
		f.Close()
		return nil, ataqverr.Wrap(ataqverr.FileFormat, path, err)
	}
	return &Source{path: path, file: f, reader: r}, nil
}

// Header returns the BAM header.
func (s *Source) Header() *sam.Header { return s.reader.Header() }

// Next returns the next record in file order, or io.EOF at the end of the
// file. Per spec.md §5, the decoded record is not reused across calls at
// this layer (the underlying bam.Reader allocates per record); the
// classifier itself performs no per-record allocation beyond that.
func (s *Source) Next() (*sam.Record, error) {
	rec, err := s.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, ataqverr.Wrap(ataqverr.FileFormat, s.path, err)
	}
	return rec, nil
}

// Close releases the underlying file handle.
func (s *Source) Close() error {
	return s.file.Close()
}

// Index holds a parsed BAI index, shared read-only across Phase 2
// workers.
type Index struct {
	idx *bam.Index
}

// indexCandidates returns the conventional index paths for a BAM file.
func indexCandidates(bamPath string) []string {
	return []string{bamPath + ".bai", bamPath + ".csi"}
}

// OpenIndex loads the index for bamPath, trying the conventional ".bai"
// and ".csi" suffixes unless an explicit path is given. Every candidate is
// read with bam.ReadIndex, which parses the BAI format only, so a
// CSI-format file is rejected like a missing one. Returns an
// Indexing error if none is found, per spec.md §7: "range query without an
// index when TSS is requested".
func OpenIndex(bamPath string, explicitPath string) (*Index, error) {
	candidates := []string{explicitPath}
	if explicitPath == "" {
		candidates = indexCandidates(bamPath)
	}
	var lastErr error
	for _, path := range candidates {
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			lastErr = err
			continue
		}
		idx, err := bam.ReadIndex(f)
		f.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return &Index{idx: idx}, nil
	}
	return nil, ataqverr.Wrap(ataqverr.Indexing, "no usable index found for "+bamPath, lastErr)
}

// Cursor is one worker's independent position-indexed view into a BAM
// file, sharing only the immutable Index.
type Cursor struct {
	file   *os.File
	reader *bam.Reader
	index  *Index
}

// NewCursor opens its own file handle and bam.Reader onto bamPath, per
// spec.md §5: "Each worker opens its own cursor into the alignment
// source."
func NewCursor(bamPath string, index *Index) (*Cursor, error) {
	f, err := os.Open(bamPath)
	if err != nil {
		return nil, ataqverr.Wrap(ataqverr.FileOpen, bamPath, err)
	}
	r, err := bam.NewReader(f, 1)
	if err != nil {
		f.Close()
		return nil, ataqverr.Wrap(ataqverr.FileFormat, bamPath, err)
	}
	return &Cursor{file: f, reader: r, index: index}, nil
}

// Header returns this cursor's own header handle.
func (c *Cursor) Header() *sam.Header { return c.reader.Header() }

// Query returns an iterator over every record whose alignment could
// overlap [start, end) on ref.
func (c *Cursor) Query(ref *sam.Reference, start, end int) (*bam.Iterator, error) {
	chunks, err := c.index.idx.Chunks(ref, start, end)
	if err != nil {
		return nil, err
	}
	return bam.NewIterator(c.reader, chunks)
}

// Close releases the cursor's file handle.
func (c *Cursor) Close() error {
	return c.file.Close()
}
