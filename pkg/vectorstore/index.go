package vectorstore

import (
	"sort"
)

// Entry is one embedded chunk of text.
type Entry struct {
	Text   string            `json:"text"`
	Vector []float32         `json:"vector"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// Result is a scored entry returned by Query.
type Result struct {
	Text  string            `json:"text"`
	Score float32           `json:"score"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// Index is a flat in-memory vector index queried by cosine similarity.
// Entries are expected to hold normalized vectors (the embedding providers
// normalize on generation), so the dot product is the cosine score.
type Index struct {
	Entries []Entry `json:"entries"`
}

func New() *Index {
	return &Index{}
}

func (ix *Index) Add(text string, vector []float32, meta map[string]string) {
	ix.Entries = append(ix.Entries, Entry{Text: text, Vector: vector, Meta: meta})
}

// Merge appends all entries of other into ix.
func (ix *Index) Merge(other *Index) {
	if other == nil {
		return
	}
	ix.Entries = append(ix.Entries, other.Entries...)
}

func (ix *Index) Len() int {
	return len(ix.Entries)
}

// Query returns the top-k entries ranked by cosine similarity to vector.
func (ix *Index) Query(vector []float32, k int) []Result {
	results := make([]Result, 0, len(ix.Entries))
	for _, e := range ix.Entries {
		results = append(results, Result{
			Text:  e.Text,
			Score: cosine(vector, e.Vector),
			Meta:  e.Meta,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot)
}
