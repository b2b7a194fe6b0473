package vectorstore

import (
	"errors"
	"testing"

	"minima-be/pkg/embedding"
)

func TestIndexQueryRanksBySimilarity(t *testing.T) {
	ix := New()
	ix.Add("about cats", []float32{1, 0, 0}, nil)
	ix.Add("about dogs", []float32{0, 1, 0}, nil)
	ix.Add("cats and dogs", []float32{0.7, 0.7, 0}, nil)

	results := ix.Query([]float32{1, 0, 0}, 2)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Text != "about cats" {
		t.Errorf("top result = %q, want %q", results[0].Text, "about cats")
	}
	if results[1].Text != "cats and dogs" {
		t.Errorf("second result = %q, want %q", results[1].Text, "cats and dogs")
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not ordered by score: %v < %v", results[0].Score, results[1].Score)
	}
}

func TestIndexQueryKLargerThanIndex(t *testing.T) {
	ix := New()
	ix.Add("only entry", []float32{1, 0}, nil)

	results := ix.Query([]float32{1, 0}, 5)
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestIndexMerge(t *testing.T) {
	a := New()
	a.Add("a", []float32{1}, nil)
	b := New()
	b.Add("b", []float32{1}, nil)
	b.Add("c", []float32{1}, nil)

	a.Merge(b)
	a.Merge(nil)

	if a.Len() != 3 {
		t.Errorf("merged length = %d, want 3", a.Len())
	}
}

func TestDiskStoreRoundTrip(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	ix := New()
	ix.Add("chunk one", []float32{0.1, 0.2}, map[string]string{"source": "report.pdf"})
	ix.Add("chunk two", []float32{0.3, 0.4}, nil)

	if err := store.Save("alice", "report", ix); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !store.Exists("alice", "report") {
		t.Error("Exists = false after Save")
	}

	loaded, err := store.Load("alice", "report")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded %d entries, want 2", loaded.Len())
	}
	if loaded.Entries[0].Text != "chunk one" {
		t.Errorf("entry[0].Text = %q", loaded.Entries[0].Text)
	}
	if loaded.Entries[0].Meta["source"] != "report.pdf" {
		t.Errorf("entry[0] lost its metadata")
	}
}

func TestDiskStoreLoadMissing(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	_, err := store.Load("alice", "ghost")
	if !errors.Is(err, ErrIndexNotFound) {
		t.Errorf("err = %v, want ErrIndexNotFound", err)
	}
}

func TestIndexName(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"report.pdf", "report"},
		{"My Notes.txt", "My_Notes"},
		{"/tmp/uploads/résumé.pdf", "resume"},
		{"no-extension", "no-extension"},
	}
	for _, tt := range tests {
		if got := IndexName(tt.fileName); got != tt.want {
			t.Errorf("IndexName(%q) = %q, want %q", tt.fileName, got, tt.want)
		}
	}
}

type constEmbedder struct {
	vector []float32
}

func (c constEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: c.vector},
	}, nil
}

func TestRetrieverMergesNamedIndices(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	a := New()
	a.Add("alpha", []float32{1, 0}, nil)
	if err := store.Save("alice", "a", a); err != nil {
		t.Fatal(err)
	}
	b := New()
	b.Add("beta", []float32{0, 1}, nil)
	if err := store.Save("alice", "b", b); err != nil {
		t.Fatal(err)
	}

	r := NewRetriever(store, constEmbedder{vector: []float32{1, 0}})
	results, err := r.Retrieve("alice", []string{"a.pdf", "b.pdf"}, "query", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 from merged indices", len(results))
	}
	if results[0].Text != "alpha" {
		t.Errorf("top result = %q, want %q", results[0].Text, "alpha")
	}
}

func TestRetrieverMissingIndexFailsFast(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	a := New()
	a.Add("alpha", []float32{1}, nil)
	if err := store.Save("alice", "a", a); err != nil {
		t.Fatal(err)
	}

	r := NewRetriever(store, constEmbedder{vector: []float32{1}})
	_, err := r.Retrieve("alice", []string{"a.pdf", "missing.pdf"}, "query", 5)
	if !errors.Is(err, ErrIndexNotFound) {
		t.Errorf("err = %v, want ErrIndexNotFound", err)
	}
}

func TestRetrieverPartitionIsolation(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	a := New()
	a.Add("alice data", []float32{1}, nil)
	if err := store.Save("alice", "doc", a); err != nil {
		t.Fatal(err)
	}

	r := NewRetriever(store, constEmbedder{vector: []float32{1}})
	_, err := r.Retrieve("bob", []string{"doc.pdf"}, "query", 5)
	if !errors.Is(err, ErrIndexNotFound) {
		t.Errorf("err = %v, want ErrIndexNotFound for foreign partition", err)
	}
}
