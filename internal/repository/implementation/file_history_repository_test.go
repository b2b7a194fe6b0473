package implementation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"minima-be/internal/apperror"
	"minima-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *FileHistoryRepository {
	t.Helper()
	return NewFileHistoryRepository(filepath.Join(t.TempDir(), "history", "chatHistory.json"))
}

func textMessages(texts ...string) []entity.Message {
	var messages []entity.Message
	for i, text := range texts {
		role := entity.RoleUser
		if i%2 == 1 {
			role = entity.RoleAssistant
		}
		messages = append(messages, entity.TextMessage(role, text))
	}
	return messages
}

func TestFileHistoryUpsertAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "alice", "c1", textMessages("hi", "hello")))
	require.NoError(t, repo.Upsert(ctx, "alice", "c2", textMessages("second")))
	require.NoError(t, repo.Upsert(ctx, "bob", "c1", textMessages("other user")))

	conversations, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, "c1", conversations[0].Id)
	assert.Equal(t, "hi", conversations[0].Messages[0].Content.Text)

	// partitions are isolated
	others, err := repo.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "other user", others[0].Messages[0].Content.Text)
}

func TestFileHistoryUpsertReplacesMessages(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "alice", "c1", textMessages("v1")))
	require.NoError(t, repo.Upsert(ctx, "alice", "c1", textMessages("v2", "reply")))

	conversations, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	require.Len(t, conversations[0].Messages, 2)
	assert.Equal(t, "v2", conversations[0].Messages[0].Content.Text)
}

func TestFileHistoryListEmptyPartition(t *testing.T) {
	repo := newTestRepo(t)

	conversations, err := repo.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, conversations)
}

func TestFileHistoryDeleteMessage(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "alice", "c1", textMessages("a", "b", "c")))
	require.NoError(t, repo.DeleteMessage(ctx, "alice", "c1", 1))

	conversations, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, conversations[0].Messages, 2)
	assert.Equal(t, "a", conversations[0].Messages[0].Content.Text)
	assert.Equal(t, "c", conversations[0].Messages[1].Content.Text)
}

func TestFileHistoryDeleteMessageOutOfRangeIsNoop(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "alice", "c1", textMessages("a")))

	assert.NoError(t, repo.DeleteMessage(ctx, "alice", "c1", 5))
	assert.NoError(t, repo.DeleteMessage(ctx, "alice", "c1", -1))

	conversations, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, conversations[0].Messages, 1)
}

func TestFileHistoryDeleteMessageMissingTargets(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.DeleteMessage(ctx, "ghost", "c1", 0)
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "missing partition should be NotFound, got %v", err)

	require.NoError(t, repo.Upsert(ctx, "alice", "c1", textMessages("a")))
	err = repo.DeleteMessage(ctx, "alice", "ghost", 0)
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "missing conversation should be NotFound, got %v", err)
}

func TestFileHistoryDeleteConversation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "alice", "c1", textMessages("a")))
	require.NoError(t, repo.Upsert(ctx, "alice", "c2", textMessages("b")))

	require.NoError(t, repo.DeleteConversation(ctx, "alice", "c1"))

	conversations, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "c2", conversations[0].Id)

	// deleting something already gone is a no-op
	assert.NoError(t, repo.DeleteConversation(ctx, "alice", "c1"))
	assert.NoError(t, repo.DeleteConversation(ctx, "ghost", "c1"))
}

func TestFileHistorySurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatHistory.json")
	ctx := context.Background()

	first := NewFileHistoryRepository(path)
	require.NoError(t, first.Upsert(ctx, "alice", "c1", textMessages("persisted")))

	second := NewFileHistoryRepository(path)
	conversations, err := second.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "persisted", conversations[0].Messages[0].Content.Text)
}

func TestFileHistoryConcurrentUpserts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", n)
			assert.NoError(t, repo.Upsert(ctx, "alice", id, textMessages("msg")))
		}(i)
	}
	wg.Wait()

	conversations, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, conversations, 10)
}
