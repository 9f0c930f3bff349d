package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dshills/gochunk"
	"github.com/dshills/gochunk/pkg/types"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("gochunk\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		os.Exit(0)
	}

	var (
		maxTokens = flag.Int("max-tokens", 2000, "token budget per chunk")
		overlap   = flag.Int("overlap", 100, "overlap tokens between chunks")
		strategy  = flag.String("strategy", "auto", "boundary strategy: auto, semantic, structural, sentence, fixed")
		tokens    = flag.String("token-strategy", "balanced", "token estimation: performance, balanced, precision")
		comments  = flag.Bool("comments", false, "prepend chunk header comments")
		streaming = flag.Bool("stream", false, "stream the file instead of loading it whole")
		metaJSON  = flag.Bool("meta", false, "print per-chunk metadata as JSON instead of chunk text")
		workers   = flag.Int("workers", 0, "max parallel workers (0 = auto)")
		timeout   = flag.Duration("timeout", 0, "abort the operation after this duration (0 = no limit)")
		verbose   = flag.Bool("verbose", false, "debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gochunk [flags] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Chunks a file (or stdin when no file is given) into token-bounded pieces.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// Chunks go to stdout; everything else to stderr.
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []gochunk.Option{
		gochunk.WithMaxTokens(*maxTokens),
		gochunk.WithOverlapTokens(*overlap),
		gochunk.WithStrategy(types.ChunkingStrategy(*strategy)),
		gochunk.WithTokenStrategy(types.TokenEstimationStrategy(*tokens)),
		gochunk.WithMetadataComments(*comments),
		gochunk.WithMaxWorkers(*workers),
		gochunk.WithTimeout(*timeout),
		gochunk.WithLogger(logger),
	}

	path := flag.Arg(0)
	start := time.Now()
	var err error
	var emitted int
	if *streaming && path != "" {
		emitted, err = runStream(path, *metaJSON, opts)
	} else {
		emitted, err = runOneShot(path, *metaJSON, logger, opts)
	}
	if err != nil {
		logger.Error("chunking failed", "err", err)
		os.Exit(1)
	}
	logger.Info("done", "chunks", emitted, "elapsed", time.Since(start))
}

// maxOneShotBytes bounds how much runOneShot will hold in memory; larger
// files must use --stream.
const maxOneShotBytes = 256 << 20

func runOneShot(path string, metaJSON bool, logger *slog.Logger, opts []gochunk.Option) (int, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(io.LimitReader(os.Stdin, maxOneShotBytes+1))
	} else {
		if info, statErr := os.Stat(path); statErr == nil && info.Size() > maxOneShotBytes {
			return 0, &types.ResourceExhaustionError{
				Resource: "memory (use --stream)",
				Needed:   info.Size(),
				Limit:    maxOneShotBytes,
			}
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return 0, err
	}
	if len(data) > maxOneShotBytes {
		return 0, &types.ResourceExhaustionError{
			Resource: "memory (pipe through a file and use --stream)",
			Needed:   int64(len(data)),
			Limit:    maxOneShotBytes,
		}
	}

	result, err := gochunk.Chunk(string(data), opts...)
	if err != nil {
		return 0, err
	}
	logger.Info("chunked",
		"format", result.DetectedFormat,
		"strategies", result.Strategies,
		"tokens", result.TotalTokens,
		"failed_segments", result.SegmentsFailed)

	enc := json.NewEncoder(os.Stdout)
	for i, chunk := range result.Chunks {
		if metaJSON {
			if err := enc.Encode(result.Metadata[i]); err != nil {
				return i, err
			}
			continue
		}
		fmt.Println(chunk)
	}
	return len(result.Chunks), nil
}

func runStream(path string, metaJSON bool, opts []gochunk.Option) (int, error) {
	sc, err := gochunk.ChunkFile(path, opts...)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(os.Stdout)
	count := 0
	for sc.Scan() {
		if metaJSON {
			if err := enc.Encode(sc.Metadata()); err != nil {
				return count, err
			}
		} else {
			fmt.Println(sc.Chunk())
		}
		count++
	}
	return count, sc.Err()
}
