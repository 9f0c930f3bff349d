package gochunk

import (
	"io"

	"github.com/dshills/gochunk/internal/assembler"
	"github.com/dshills/gochunk/internal/stream"
	"github.com/dshills/gochunk/internal/token"
	"github.com/dshills/gochunk/pkg/types"
)

// StreamChunker emits chunks lazily from a source too large to hold in
// memory. It follows the Scan idiom: Scan advances, Chunk and Metadata
// return the current chunk, Err reports the terminal error. Chunks arrive
// in source order, and the stream is not restartable.
//
// Overlap carries across window boundaries: each window after the first
// replays the tail of the previous one, and the first chunk cut from a
// replayed window is marked as overlapping its predecessor.
//
// TotalChunks in streamed metadata is the count emitted so far; the final
// total is unknowable before the stream ends. For the same reason chunk
// header comments are disabled in stream mode regardless of options.
type StreamChunker struct {
	scanner *stream.Scanner
	asm     *assembler.Assembler
	opts    *types.ChunkingOptions

	pending []string
	metas   []types.ChunkMetadata
	emitted int
	offset  int64
	chunk   string
	meta    types.ChunkMetadata
	err     error
}

// NewStreamChunker chunks from an io.Reader.
func NewStreamChunker(r io.Reader, options ...Option) (*StreamChunker, error) {
	c, err := New(options...)
	if err != nil {
		return nil, err
	}
	sc := newStreamChunker(c)
	sc.scanner = stream.NewScanner(r, "reader", c.opts)
	return sc, nil
}

// ChunkFile chunks a file without loading it whole.
func ChunkFile(path string, options ...Option) (*StreamChunker, error) {
	c, err := New(options...)
	if err != nil {
		return nil, err
	}
	scanner, err := stream.Open(path, c.opts)
	if err != nil {
		return nil, err
	}
	sc := newStreamChunker(c)
	sc.scanner = scanner
	return sc, nil
}

func newStreamChunker(c *Chunker) *StreamChunker {
	opts := c.opts.Clone()
	opts.AddMetadataComments = false
	return &StreamChunker{
		asm:  assembler.New(token.NewEstimator(), c.logger),
		opts: opts,
	}
}

// Scan advances to the next chunk. It returns false at end of input or on
// error; Err distinguishes the two.
func (s *StreamChunker) Scan() bool {
	if s.err != nil {
		return false
	}
	for len(s.pending) == 0 {
		if !s.scanner.Scan() {
			s.err = s.scanner.Err()
			return false
		}
		if err := s.process(s.scanner.Window()); err != nil {
			s.err = err
			return false
		}
	}

	s.chunk = s.pending[0]
	s.meta = s.metas[0]
	s.pending = s.pending[1:]
	s.metas = s.metas[1:]
	s.emitted++
	return true
}

func (s *StreamChunker) process(window string) error {
	res, err := s.asm.Process(window, s.opts)
	if err != nil {
		return &types.StreamProcessingError{Source: "window", Offset: s.offset, Err: err}
	}
	// The window head may replay the tail of the previous window; shift
	// position rebasing back to the true window start, and mark the first
	// chunk as overlapping the last chunk of the previous window.
	replayed := s.scanner.Replayed()
	base := int(s.offset) - replayed
	if base < 0 {
		base = 0
	}
	for i, chunk := range res.Chunks {
		m := res.Metadata[i]
		m.Index = s.emitted + len(s.pending)
		m.TotalChunks = m.Index + 1
		if i == 0 && replayed > 0 && m.Index > 0 {
			m.HasOverlap = true
		}
		if m.HasOverlap {
			// Overlap sources are window-local; rebase to stream indices.
			m.OverlapFrom = m.Index - 1
		}
		if m.ContentStart >= 0 {
			m.ContentStart += base
			m.ContentEnd += base
		}
		s.pending = append(s.pending, chunk)
		s.metas = append(s.metas, m)
	}
	s.offset = s.scanner.Offset()
	return nil
}

// Chunk returns the current chunk text. Valid after a true Scan.
func (s *StreamChunker) Chunk() string { return s.chunk }

// Metadata returns the current chunk's metadata.
func (s *StreamChunker) Metadata() types.ChunkMetadata { return s.meta }

// Err returns the terminal error, nil after a clean end of stream.
func (s *StreamChunker) Err() error { return s.err }
