package vectorstore

import (
	"fmt"
	"path/filepath"
	"strings"

	"minima-be/pkg/embedding"
	"minima-be/pkg/utils"
)

const queryTaskType = "RETRIEVAL_QUERY"

// Retriever resolves named per-partition indices from disk and answers
// similarity queries against their merged contents.
type Retriever struct {
	store    *DiskStore
	embedder embedding.EmbeddingProvider
}

func NewRetriever(store *DiskStore, embedder embedding.EmbeddingProvider) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// IndexName maps an uploaded file name to its on-disk index name: the base
// name without extension, transliterated to a filesystem-safe form.
func IndexName(fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return utils.SafeKey(base)
}

// Retrieve loads every named index for the partition, merges them into one
// transient index and returns the top-k chunks for the query text. A single
// missing index fails the whole call with ErrIndexNotFound: partial
// augmentation is never served.
func (r *Retriever) Retrieve(partition string, fileNames []string, query string, k int) ([]Result, error) {
	merged := New()
	for _, fileName := range fileNames {
		name := IndexName(fileName)
		ix, err := r.store.Load(partition, name)
		if err != nil {
			return nil, err
		}
		merged.Merge(ix)
	}

	embedded, err := r.embedder.Generate(query, queryTaskType)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return merged.Query(embedded.Embedding.Values, k), nil
}
