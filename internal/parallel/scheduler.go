package parallel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/gochunk/internal/assembler"
	"github.com/dshills/gochunk/internal/format"
	"github.com/dshills/gochunk/pkg/types"
)

// serialThreshold is the document size below which segmentation is not
// worth the coordination cost.
const serialThreshold = 256 * 1024

// pilotSegments is how many segments run serially up front to measure
// per-segment latency before the pool width is chosen.
const pilotSegments = 2

// Scheduler fans chunking out over document segments and merges the
// per-segment results in order.
type Scheduler struct {
	asm    *assembler.Assembler
	logger *slog.Logger
}

// NewScheduler creates a Scheduler around an assembler. A nil logger falls
// back to the default.
func NewScheduler(asm *assembler.Assembler, logger *slog.Logger) *Scheduler {
	if asm == nil {
		asm = assembler.New(nil, logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{asm: asm, logger: logger}
}

// Process chunks text, running segments concurrently when the document is
// large enough to justify it. Chunk order always matches document order.
func (s *Scheduler) Process(ctx context.Context, text string, opts *types.ChunkingOptions) (*types.ChunkingResult, error) {
	if opts == nil {
		opts = types.DefaultOptions()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if len(text) < serialThreshold {
		return s.serial(ctx, text, opts)
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	segments := Split(text, workers)
	if len(segments) <= 1 {
		return s.serial(ctx, text, opts)
	}
	if err := types.ValidateSegments(segments, len(text)); err != nil {
		s.logger.Warn("segment validation failed; running serial", "err", err)
		return s.serial(ctx, text, opts)
	}

	start := time.Now()
	opID := uuid.NewString()

	// Segment results carry no headers; headers are re-rendered after the
	// merge so the indices reflect the whole document.
	segOpts := opts.Clone()
	segOpts.AddMetadataComments = false
	segOpts.Timeout = 0

	results := make([]*types.ChunkingResult, len(segments))
	var failed atomic.Int32

	runOne := func(ctx context.Context, i int) {
		if ctx.Err() != nil {
			failed.Add(1)
			return
		}
		seg := segments[i]
		res, err := s.runSegment(text[seg.Start:seg.End], segOpts)
		if err != nil {
			s.logger.Warn("segment failed; substituting empty output",
				"op", opID, "segment", i, "worker", seg.Worker, "err", err)
			failed.Add(1)
			return
		}
		results[i] = res
	}

	// Pilot batch: serial, measured, its results reused.
	pilot := pilotSegments
	if pilot > len(segments) {
		pilot = len(segments)
	}
	pilotStart := time.Now()
	for i := 0; i < pilot; i++ {
		runOne(ctx, i)
	}
	avg := time.Since(pilotStart) / time.Duration(pilot)
	kind := ChooseExecutor(avg)
	width := kind.Workers(workers)
	s.logger.Debug("executor selected",
		"op", opID, "avg_segment_latency", avg, "executor", kind.String(), "workers", width)

	if kind == ExecSerial {
		for i := pilot; i < len(segments); i++ {
			runOne(ctx, i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		sem := make(chan struct{}, width)
		for i := pilot; i < len(segments); i++ {
			g.Go(func() error {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-gctx.Done():
					failed.Add(1)
					return nil
				}
				runOne(gctx, i)
				return nil
			})
		}
		// Workers swallow per-segment errors, so Wait only fails on
		// context cancellation.
		_ = g.Wait()
	}

	if err := ctx.Err(); errors.Is(err, context.DeadlineExceeded) {
		return nil, &types.TimeoutExceededError{Elapsed: time.Since(start), Limit: opts.Timeout}
	}

	nFailed := int(failed.Load())
	if nFailed > len(segments)/2 {
		return nil, &types.ParallelProcessingError{
			Completed: len(segments) - nFailed,
			Failed:    nFailed,
			Err:       fmt.Errorf("%d of %d segments failed", nFailed, len(segments)),
		}
	}

	merged := s.merge(text, segments, results, opts)
	merged.OperationID = opID
	merged.SegmentsFailed = nFailed
	merged.ProcessingTime = time.Since(start)
	return merged, nil
}

func (s *Scheduler) serial(ctx context.Context, text string, opts *types.ChunkingOptions) (*types.ChunkingResult, error) {
	start := time.Now()
	res, err := s.asm.Process(text, opts)
	if err == nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, &types.TimeoutExceededError{Elapsed: time.Since(start), Limit: opts.Timeout}
		}
	}
	return res, err
}

// runSegment isolates a single segment so a panic in one cannot take down
// the pool.
func (s *Scheduler) runSegment(text string, opts *types.ChunkingOptions) (res *types.ChunkingResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("segment panic: %v", r)
		}
	}()
	return s.asm.Process(text, opts)
}

// merge concatenates segment results in segment order and rewrites the
// per-chunk indices, positions, and headers for the whole document.
func (s *Scheduler) merge(text string, segments []types.Segment, results []*types.ChunkingResult, opts *types.ChunkingOptions) *types.ChunkingResult {
	detected, _ := format.Detect(text)
	out := &types.ChunkingResult{
		Chunks:         []string{},
		Metadata:       []types.ChunkMetadata{},
		OriginalLength: len(text),
		DetectedFormat: detected,
	}

	seen := map[string]bool{}
	for i, res := range results {
		if res == nil {
			continue
		}
		for _, name := range res.Strategies {
			if !seen[name] {
				seen[name] = true
				out.Strategies = append(out.Strategies, name)
			}
		}
		base := len(out.Chunks)
		for j, chunk := range res.Chunks {
			m := res.Metadata[j]
			m.Index = base + j
			m.Format = detected
			if m.HasOverlap {
				m.OverlapFrom += base
			}
			if m.ContentStart >= 0 {
				m.ContentStart += segments[i].Start
				m.ContentEnd += segments[i].Start
			}
			out.Chunks = append(out.Chunks, chunk)
			out.Metadata = append(out.Metadata, m)
		}
	}

	total := len(out.Chunks)
	for i := range out.Metadata {
		out.Metadata[i].TotalChunks = total
		out.TotalTokens += out.Metadata[i].TokenCount
	}
	if opts.AddMetadataComments {
		// Headers count toward the token budget; Decorate re-validates
		// so no chunk comes back over it.
		s.asm.Decorate(text, out, opts)
	}
	return out
}
