package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInputIsSingleChunk(t *testing.T) {
	chunks := SplitText("short", 100, 10)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Errorf("chunks = %v, want single original chunk", chunks)
	}
}

func TestSplitTextChunksOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := SplitText(text, 40, 10)

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 40 {
			t.Errorf("chunk[%d] is %d chars, budget 40", i, len(chunk))
		}
	}
	// consecutive chunks share the overlap region
	first := chunks[0]
	second := chunks[1]
	if !strings.HasPrefix(second, first[len(first)-10:]) {
		t.Errorf("chunk[1] does not start with the overlap of chunk[0]")
	}
	// no content is lost: stitching with overlap removed rebuilds the text
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		rebuilt.WriteString(chunk[10:])
	}
	if rebuilt.String() != text {
		t.Error("stitched chunks do not reconstruct the input")
	}
}

func TestSplitTextOverlapLargerThanChunk(t *testing.T) {
	text := strings.Repeat("x", 50)
	chunks := SplitText(text, 10, 20)

	if len(chunks) == 0 {
		t.Fatal("no chunks returned")
	}
	var total int
	for _, chunk := range chunks {
		total += len(chunk)
	}
	if total < len(text) {
		t.Errorf("chunks cover %d chars of %d", total, len(text))
	}
}
