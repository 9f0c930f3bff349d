package parallel

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gochunk/internal/assembler"
	"github.com/dshills/gochunk/pkg/types"
)

func bigProse(targetBytes int) string {
	var b strings.Builder
	for i := 0; b.Len() < targetBytes; i++ {
		fmt.Fprintf(&b, "MARKER-%06d begins this paragraph. ", i)
		b.WriteString("It carries enough prose that segmentation has real work to do. ")
		b.WriteString("Sentences end cleanly so natural breaks are plentiful.\n\n")
	}
	return b.String()
}

func TestSplitCoversAndOrders(t *testing.T) {
	text := bigProse(300_000)
	segments := Split(text, 4)
	require.NoError(t, types.ValidateSegments(segments, len(text)))
	assert.GreaterOrEqual(t, len(segments), 4)

	for i, seg := range segments {
		assert.Equal(t, i%4, seg.Worker)
		if seg.End < len(text) {
			// Cuts land after a break, so each segment after the first
			// starts on fresh content rather than mid-word.
			assert.True(t, text[seg.End-1] == '\n' || text[seg.End-1] == ' ',
				"segment %d cut mid-word at %d", i, seg.End)
		}
	}
}

func TestSplitEmptyAndTiny(t *testing.T) {
	assert.Nil(t, Split("", 4))

	segments := Split("tiny", 4)
	require.Len(t, segments, 1)
	assert.Equal(t, 0, segments[0].Start)
	assert.Equal(t, 4, segments[0].End)
}

func TestSplitNoBreaks(t *testing.T) {
	text := strings.Repeat("x", 50_000)
	segments := Split(text, 4)
	require.NoError(t, types.ValidateSegments(segments, len(text)))
	assert.Greater(t, len(segments), 1)
}

func TestChooseExecutor(t *testing.T) {
	assert.Equal(t, ExecSerial, ChooseExecutor(50*time.Microsecond))
	assert.Equal(t, ExecBalanced, ChooseExecutor(1*time.Millisecond))
	assert.Equal(t, ExecWide, ChooseExecutor(20*time.Millisecond))
}

func TestExecutorWorkersRespectsCap(t *testing.T) {
	assert.Equal(t, 1, ExecSerial.Workers(8))
	assert.LessOrEqual(t, ExecWide.Workers(2), 2)
	assert.GreaterOrEqual(t, ExecBalanced.Workers(0), 1)
}

func TestSchedulerSerialForSmallInput(t *testing.T) {
	s := NewScheduler(assembler.New(nil, nil), nil)
	res, err := s.Process(context.Background(), "small document, serial path", types.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, res.Chunks, 1)
	assert.Zero(t, res.SegmentsFailed)
}

func TestSchedulerPreservesDocumentOrder(t *testing.T) {
	s := NewScheduler(assembler.New(nil, nil), nil)
	opts := types.DefaultOptions()
	opts.MaxTokensPerChunk = 500
	opts.MaxWorkers = 4
	// Overlap replays tail content at chunk heads, which would make the
	// marker sequence legitimately non-monotonic.
	opts.OverlapTokens = 0

	text := bigProse(400_000)
	res, err := s.Process(context.Background(), text, opts)
	require.NoError(t, err)
	require.NoError(t, res.Validate())
	require.Greater(t, len(res.Chunks), 4)
	assert.Zero(t, res.SegmentsFailed)

	// Marker sequence across the concatenated chunks must be monotonic:
	// the merge keys results by segment index, never completion order.
	joined := strings.Join(res.Chunks, "\n")
	last := -1
	for _, loc := range markerValues(joined) {
		require.GreaterOrEqual(t, loc, last, "chunk order does not follow document order")
		last = loc
	}
	assert.Greater(t, last, 0)
}

func markerValues(s string) []int {
	var out []int
	for i := 0; ; {
		j := strings.Index(s[i:], "MARKER-")
		if j < 0 {
			return out
		}
		i += j + len("MARKER-")
		if i+6 > len(s) {
			return out
		}
		n := 0
		ok := true
		for _, c := range s[i : i+6] {
			if c < '0' || c > '9' {
				ok = false
				break
			}
			n = n*10 + int(c-'0')
		}
		if ok {
			out = append(out, n)
		}
	}
}

func TestSchedulerTokenBoundHolds(t *testing.T) {
	s := NewScheduler(assembler.New(nil, nil), nil)
	opts := types.DefaultOptions()
	opts.MaxTokensPerChunk = 400
	opts.MaxWorkers = 4

	res, err := s.Process(context.Background(), bigProse(300_000), opts)
	require.NoError(t, err)
	limit := opts.EffectiveMaxTokens()
	for i, m := range res.Metadata {
		assert.LessOrEqual(t, m.TokenCount, limit, "chunk %d over budget", i)
	}
}

func TestSchedulerTimeout(t *testing.T) {
	s := NewScheduler(assembler.New(nil, nil), nil)
	opts := types.DefaultOptions()
	opts.Timeout = 1 * time.Nanosecond

	_, err := s.Process(context.Background(), bigProse(300_000), opts)
	require.Error(t, err)
	var tErr *types.TimeoutExceededError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, opts.Timeout, tErr.Limit)
}

func TestSchedulerMetadataCommentsAfterMerge(t *testing.T) {
	s := NewScheduler(assembler.New(nil, nil), nil)
	opts := types.DefaultOptions()
	opts.MaxTokensPerChunk = 500
	opts.MaxWorkers = 4
	opts.AddMetadataComments = true

	res, err := s.Process(context.Background(), bigProse(300_000), opts)
	require.NoError(t, err)
	require.Greater(t, len(res.Chunks), 2)
	total := len(res.Chunks)
	assert.True(t, strings.HasPrefix(res.Chunks[0], fmt.Sprintf("# CHUNK 1/%d", total)))
	assert.True(t, strings.HasPrefix(res.Chunks[total-1], fmt.Sprintf("# CHUNK %d/%d", total, total)))
}

func TestSchedulerMetadataCommentsHoldTokenBudget(t *testing.T) {
	s := NewScheduler(assembler.New(nil, nil), nil)
	opts := types.DefaultOptions()
	opts.MaxTokensPerChunk = 200
	opts.SafetyMargin = 1.0
	opts.MaxWorkers = 4
	opts.AddMetadataComments = true

	res, err := s.Process(context.Background(), bigProse(300_000), opts)
	require.NoError(t, err)
	require.Greater(t, len(res.Chunks), 1)
	for i, m := range res.Metadata {
		assert.LessOrEqual(t, m.TokenCount, opts.MaxTokensPerChunk, "chunk %d over budget", i)
	}
}
