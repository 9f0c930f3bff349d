package stream

import (
	"io"
	"os"
	"strings"

	"github.com/dshills/gochunk/internal/textscan"
	"github.com/dshills/gochunk/pkg/types"
)

const (
	// splitFraction is where inside a full buffer the window split is
	// targeted; the remainder carries into the next fill.
	splitFraction = 0.8

	// maxBackscan caps how far SafeSplitPoint walks backward looking for
	// a natural break, so whitespace-free input stays O(window).
	maxBackscan = 8 * 1024

	minBufferSize = 4 * 1024
)

// Scanner windows a source into overlapping slices. Not safe for
// concurrent use, and not restartable: once Scan has returned false the
// Scanner is consumed.
type Scanner struct {
	r       io.Reader
	closer  io.Closer
	source  string
	bufSize int
	overlap int

	buf        []byte
	replayed   int
	headReplay int
	window     string
	offset   int64
	eof      bool
	done     bool
	err      error
}

// NewScanner wraps an io.Reader. The source label appears in errors.
func NewScanner(r io.Reader, source string, opts *types.ChunkingOptions) *Scanner {
	if opts == nil {
		opts = types.DefaultOptions()
	}
	size := opts.StreamBufferSize
	if size < minBufferSize {
		size = minBufferSize
	}
	overlap := opts.OverlapChars()
	// Overlap must leave room for forward progress.
	if overlap > size/4 {
		overlap = size / 4
	}
	return &Scanner{
		r:       r,
		source:  source,
		bufSize: size,
		overlap: overlap,
		buf:     make([]byte, 0, size+minBufferSize),
	}
}

// NewStringScanner windows an in-memory string.
func NewStringScanner(s string, opts *types.ChunkingOptions) *Scanner {
	return NewScanner(strings.NewReader(s), "string", opts)
}

// Open creates a Scanner over a file. The file is closed when the scan
// completes or fails.
func Open(path string, opts *types.ChunkingOptions) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.StreamProcessingError{Source: path, Err: err}
	}
	s := NewScanner(f, path, opts)
	s.closer = f
	return s, nil
}

// Scan advances to the next window. It returns false at end of input or on
// error; Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.done {
		if s.err == nil {
			s.err = types.ErrStreamConsumed
		}
		return false
	}
	if err := s.fill(); err != nil {
		s.fail(err)
		return false
	}
	if len(s.buf) == 0 {
		s.finish()
		return false
	}

	if s.eof && len(s.buf) <= s.bufSize {
		// Terminal window: emit everything that remains.
		s.window = string(s.buf)
		s.headReplay = s.replayed
		s.offset += int64(len(s.buf) - s.replayed)
		s.buf = s.buf[:0]
		s.replayed = 0
		return true
	}

	target := int(float64(s.bufSize) * splitFraction)
	cut := textscan.SafeSplitPoint(string(s.buf), target, maxBackscan)
	if cut <= s.overlap {
		// The break fell inside the replayed overlap; force progress past
		// it or the same bytes would be emitted forever.
		cut = alignForward(s.buf, target)
	}
	s.window = string(s.buf[:cut])
	s.headReplay = s.replayed

	keepFrom := cut - s.overlap
	if keepFrom < 0 {
		keepFrom = 0
	}
	for keepFrom < len(s.buf) && s.buf[keepFrom]&0xC0 == 0x80 {
		keepFrom++
	}
	// Offset advances by the fresh span only: window bytes minus what was
	// replayed at its head.
	s.offset += int64(cut - s.replayed)

	rest := s.buf[keepFrom:]
	next := make([]byte, len(rest), cap(s.buf))
	copy(next, rest)
	s.buf = next
	s.replayed = cut - keepFrom
	return true
}

// Window returns the current window. Valid until the next Scan call.
func (s *Scanner) Window() string { return s.window }

// Overlap returns the byte length replayed at the head of each non-first
// window.
func (s *Scanner) Overlap() int { return s.overlap }

// Replayed returns how many bytes at the head of the current window were
// carried over from the previous one. Zero for the first window and
// whenever overlap is disabled. Valid until the next Scan call.
func (s *Scanner) Replayed() int { return s.headReplay }

// Offset returns the source offset just past the last emitted window's
// fresh content.
func (s *Scanner) Offset() int64 { return s.offset }

// Err returns the terminal error, nil after a clean end of input. Calling
// Scan again after completion is a programming error and surfaces
// types.ErrStreamConsumed here.
func (s *Scanner) Err() error { return s.err }

// fill tops the buffer up to one window past bufSize so the split point
// always has lookahead.
func (s *Scanner) fill() error {
	want := s.bufSize + minBufferSize/2
	for !s.eof && len(s.buf) < want {
		if len(s.buf)+minBufferSize > cap(s.buf) {
			grown := make([]byte, len(s.buf), cap(s.buf)*2)
			copy(grown, s.buf)
			s.buf = grown
		}
		chunk := s.buf[len(s.buf) : len(s.buf)+minBufferSize]
		n, err := s.r.Read(chunk)
		s.buf = s.buf[:len(s.buf)+n]
		if err == io.EOF {
			s.eof = true
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) fail(err error) {
	s.err = &types.StreamProcessingError{Source: s.source, Offset: s.offset, Err: err}
	s.window = ""
	s.close()
}

func (s *Scanner) finish() {
	s.window = ""
	s.close()
}

func (s *Scanner) close() {
	s.done = true
	if s.closer != nil {
		_ = s.closer.Close()
		s.closer = nil
	}
}

// alignForward moves i forward to the next rune start.
func alignForward(b []byte, i int) int {
	if i >= len(b) {
		return len(b)
	}
	for i < len(b) && b[i]&0xC0 == 0x80 {
		i++
	}
	return i
}
