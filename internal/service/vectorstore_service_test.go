package service

import (
	"context"
	"sync"
	"testing"

	"minima-be/internal/entity"
	"minima-be/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVectorstoreService(t *testing.T) (IVectorstoreService, *vectorstore.DiskStore) {
	t.Helper()
	store := vectorstore.NewDiskStore(t.TempDir())
	svc := NewVectorstoreService(store, stubEmbedder{}, t.TempDir(), nil, "INDEX_DOCUMENT", nopLogger{})
	return svc, store
}

func TestCreateIndicesBuildsIndexPerFile(t *testing.T) {
	svc, store := newTestVectorstoreService(t)
	ident := testIdentity()

	files := []UploadedFile{
		{Name: "notes.txt", Data: []byte("meeting notes about the quarterly roadmap")},
	}
	require.NoError(t, svc.CreateIndices(context.Background(), ident, files))

	ix, err := store.Load(ident.PartitionKey, vectorstore.IndexName("notes.txt"))
	require.NoError(t, err)
	require.Equal(t, 1, ix.Len())
	assert.Equal(t, "meeting notes about the quarterly roadmap", ix.Entries[0].Text)
	assert.Equal(t, "notes.txt", ix.Entries[0].Meta["source"])
}

func TestCreateIndicesConcurrentSameFilenameStaysPartitioned(t *testing.T) {
	svc, store := newTestVectorstoreService(t)

	alice := &entity.Identity{Username: "alice", Origin: "10.0.0.1", PartitionKey: "alice_10.0.0.1"}
	bob := &entity.Identity{Username: "bob", Origin: "10.0.0.2", PartitionKey: "bob_10.0.0.2"}

	// same base filename uploaded by both users at once; each partition must
	// end up holding its own content
	for i := 0; i < 25; i++ {
		var wg sync.WaitGroup
		for _, tc := range []struct {
			ident   *entity.Identity
			content string
		}{
			{alice, "alice private research notes"},
			{bob, "bob private research notes"},
		} {
			wg.Add(1)
			go func(ident *entity.Identity, content string) {
				defer wg.Done()
				err := svc.CreateIndices(context.Background(), ident, []UploadedFile{
					{Name: "report.txt", Data: []byte(content)},
				})
				assert.NoError(t, err)
			}(tc.ident, tc.content)
		}
		wg.Wait()
	}

	aliceIx, err := store.Load(alice.PartitionKey, vectorstore.IndexName("report.txt"))
	require.NoError(t, err)
	require.Equal(t, 1, aliceIx.Len())
	assert.Equal(t, "alice private research notes", aliceIx.Entries[0].Text)

	bobIx, err := store.Load(bob.PartitionKey, vectorstore.IndexName("report.txt"))
	require.NoError(t, err)
	require.Equal(t, 1, bobIx.Len())
	assert.Equal(t, "bob private research notes", bobIx.Entries[0].Text)
}
