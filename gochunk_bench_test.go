package gochunk

import (
	"strings"
	"testing"
)

func BenchmarkChunk_Prose(b *testing.B) {
	text := prose(500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := Chunk(text, WithMaxTokens(400))
		if err != nil {
			b.Fatal(err)
		}
		if len(res.Chunks) == 0 {
			b.Fatal("no chunks")
		}
	}
}

func BenchmarkChunk_WithOverlap(b *testing.B) {
	text := prose(500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := Chunk(text, WithMaxTokens(400), WithOverlapTokens(50))
		if err != nil {
			b.Fatal(err)
		}
		if len(res.Chunks) == 0 {
			b.Fatal("no chunks")
		}
	}
}

func BenchmarkStreamChunker(b *testing.B) {
	text := prose(2000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sc, err := NewStreamChunker(strings.NewReader(text),
			WithMaxTokens(400),
			WithStreamBufferSize(16*1024),
		)
		if err != nil {
			b.Fatal(err)
		}
		count := 0
		for sc.Scan() {
			count++
		}
		if err := sc.Err(); err != nil {
			b.Fatal(err)
		}
		if count == 0 {
			b.Fatal("no chunks")
		}
	}
}
