package implementation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"minima-be/internal/apperror"
	"minima-be/internal/entity"
	"minima-be/internal/repository/contract"
)

// FileHistoryRepository keeps the whole store in one JSON file keyed by
// partition. Every mutation is a read-mutate-write cycle over the full file,
// so a store-level mutex serializes writers; since all partitions share the
// one backing file, the store-wide lock also covers the per-partition
// serialization the contract requires.
type FileHistoryRepository struct {
	path string
	mu   sync.RWMutex
}

var _ contract.HistoryRepository = &FileHistoryRepository{}

func NewFileHistoryRepository(path string) *FileHistoryRepository {
	return &FileHistoryRepository{path: path}
}

func (r *FileHistoryRepository) List(ctx context.Context, partition string) ([]entity.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, err := r.load()
	if err != nil {
		return nil, err
	}
	return store[partition], nil
}

func (r *FileHistoryRepository) Upsert(ctx context.Context, partition, conversationId string, messages []entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := r.load()
	if err != nil {
		return err
	}

	conversations := store[partition]
	updated := false
	for i := range conversations {
		if conversations[i].Id == conversationId {
			conversations[i].Messages = messages
			updated = true
			break
		}
	}
	if !updated {
		conversations = append(conversations, entity.Conversation{
			Id:        conversationId,
			Timestamp: time.Now(),
			Messages:  messages,
		})
	}
	store[partition] = conversations

	return r.save(store)
}

func (r *FileHistoryRepository) DeleteMessage(ctx context.Context, partition, conversationId string, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := r.load()
	if err != nil {
		return err
	}

	conversations, ok := store[partition]
	if !ok {
		return apperror.NotFoundf("no history for partition")
	}

	for i := range conversations {
		if conversations[i].Id != conversationId {
			continue
		}
		msgs := conversations[i].Messages
		if index < 0 || index >= len(msgs) {
			// out-of-range delete is a no-op; message order stays intact
			return nil
		}
		conversations[i].Messages = append(msgs[:index], msgs[index+1:]...)
		return r.save(store)
	}

	return apperror.NotFoundf("conversation %s", conversationId)
}

func (r *FileHistoryRepository) DeleteConversation(ctx context.Context, partition, conversationId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := r.load()
	if err != nil {
		return err
	}

	conversations, ok := store[partition]
	if !ok {
		return nil
	}

	filtered := conversations[:0]
	for _, c := range conversations {
		if c.Id != conversationId {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == len(conversations) {
		return nil
	}
	store[partition] = filtered

	return r.save(store)
}

func (r *FileHistoryRepository) load() (map[string][]entity.Conversation, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]entity.Conversation{}, nil
		}
		return nil, fmt.Errorf("read history store: %w", err)
	}

	store := map[string][]entity.Conversation{}
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("unmarshal history store: %w", err)
	}
	return store, nil
}

func (r *FileHistoryRepository) save(store map[string][]entity.Conversation) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history store: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write history store: %w", err)
	}
	return os.Rename(tmp, r.path)
}
