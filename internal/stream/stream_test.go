package stream

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gochunk/pkg/types"
)

func streamOpts(bufSize, overlapTokens int) *types.ChunkingOptions {
	opts := types.DefaultOptions()
	opts.StreamBufferSize = bufSize
	opts.OverlapTokens = overlapTokens
	return opts
}

func proseSource(paragraphs int) string {
	var b strings.Builder
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&b, "Paragraph %d has a few sentences. Each one ends cleanly. ", i)
		b.WriteString("The scanner should prefer these breaks over raw cuts.\n\n")
	}
	return b.String()
}

func TestScannerSmallInputOneWindow(t *testing.T) {
	text := "fits in one window"
	s := NewStringScanner(text, streamOpts(4096, 0))
	require.True(t, s.Scan())
	assert.Equal(t, text, s.Window())
	assert.False(t, s.Scan())
	assert.NoError(t, s.Err())
}

func TestScannerEmptyInput(t *testing.T) {
	s := NewStringScanner("", streamOpts(4096, 0))
	assert.False(t, s.Scan())
	assert.NoError(t, s.Err())
}

func TestScannerCoversSourceWithoutOverlap(t *testing.T) {
	text := proseSource(400)
	s := NewStringScanner(text, streamOpts(4096, 0))

	var rebuilt strings.Builder
	windows := 0
	for s.Scan() {
		windows++
		rebuilt.WriteString(s.Window())
	}
	require.NoError(t, s.Err())
	assert.Greater(t, windows, 1)
	assert.Equal(t, text, rebuilt.String())
	assert.Equal(t, int64(len(text)), s.Offset())
}

func TestScannerOverlapReplaysTail(t *testing.T) {
	text := proseSource(400)
	s := NewStringScanner(text, streamOpts(4096, 64))

	var prev string
	windows := 0
	for s.Scan() {
		w := s.Window()
		if windows > 0 && s.Overlap() > 0 {
			// Each window after the first begins with content already
			// seen at the tail of the previous window.
			head := w
			if len(head) > s.Overlap() {
				head = head[:s.Overlap()]
			}
			assert.True(t, strings.Contains(prev, strings.TrimSpace(head[:min(len(head), 32)])),
				"window %d head not found in previous window tail", windows)
		}
		prev = w
		windows++
	}
	require.NoError(t, s.Err())
	assert.Greater(t, windows, 1)
}

func TestScannerReplayedReportsWindowHead(t *testing.T) {
	text := proseSource(400)
	s := NewStringScanner(text, streamOpts(4096, 64))

	var prev string
	windows := 0
	for s.Scan() {
		w := s.Window()
		r := s.Replayed()
		if windows == 0 {
			assert.Zero(t, r)
		} else {
			require.Greater(t, r, 0, "window %d reports no replay", windows)
			require.LessOrEqual(t, r, len(w))
			assert.True(t, strings.HasSuffix(prev, w[:r]),
				"window %d replay is not the previous window's tail", windows)
		}
		prev = w
		windows++
	}
	require.NoError(t, s.Err())
	assert.Greater(t, windows, 1)
}

func TestScannerNoWhitespaceStillBounded(t *testing.T) {
	// No break anywhere: the scanner must fall back to raw cuts and still
	// terminate with bounded windows.
	text := strings.Repeat("x", 40_000)
	s := NewStringScanner(text, streamOpts(4096, 0))

	total := 0
	for s.Scan() {
		require.LessOrEqual(t, len(s.Window()), 4096+4096)
		require.Greater(t, len(s.Window()), 0)
		total += len(s.Window())
	}
	require.NoError(t, s.Err())
	assert.Equal(t, len(text), total)
}

func TestScannerPrefersParagraphBreaks(t *testing.T) {
	text := proseSource(400)
	s := NewStringScanner(text, streamOpts(4096, 0))
	require.True(t, s.Scan())
	first := s.Window()
	assert.True(t, strings.HasSuffix(first, "\n\n"),
		"window should end at a paragraph break, got %q", first[len(first)-8:])
}

func TestScannerNotRestartable(t *testing.T) {
	s := NewStringScanner("one window", streamOpts(4096, 0))
	for s.Scan() {
	}
	require.NoError(t, s.Err())

	// A Scan after completion is a reuse attempt, not a clean end.
	assert.False(t, s.Scan())
	assert.ErrorIs(t, s.Err(), types.ErrStreamConsumed)
}

type failingReader struct{ after int }

func (f *failingReader) Read(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, errors.New("disk on fire")
	}
	n := min(f.after, len(p))
	for i := 0; i < n; i++ {
		p[i] = 'a'
	}
	f.after -= n
	return n, nil
}

func TestScannerReadErrorWrapped(t *testing.T) {
	s := NewScanner(&failingReader{after: 100}, "flaky", streamOpts(4096, 0))
	for s.Scan() {
	}
	err := s.Err()
	require.Error(t, err)
	var sErr *types.StreamProcessingError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "flaky", sErr.Source)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	text := proseSource(200)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	s, err := Open(path, streamOpts(4096, 0))
	require.NoError(t, err)

	var rebuilt strings.Builder
	for s.Scan() {
		rebuilt.WriteString(s.Window())
	}
	require.NoError(t, s.Err())
	assert.Equal(t, text, rebuilt.String())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.txt"), nil)
	require.Error(t, err)
	var sErr *types.StreamProcessingError
	assert.ErrorAs(t, err, &sErr)
}
