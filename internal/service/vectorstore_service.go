package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"minima-be/internal/entity"
	"minima-be/internal/pkg/logger"
	"minima-be/pkg/embedding"
	"minima-be/pkg/events"
	"minima-be/pkg/utils"
	"minima-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

const (
	indexChunkSize    = 2000
	indexChunkOverlap = 200
	indexTaskType     = "RETRIEVAL_DOCUMENT"
)

// UploadedFile is one file from the multipart create-vectorstore request.
type UploadedFile struct {
	Name string
	Data []byte
}

type IVectorstoreService interface {
	// CreateIndices builds one on-disk vector index per uploaded file under
	// the caller's partition. Existing indices with the same name are
	// replaced.
	CreateIndices(ctx context.Context, ident *entity.Identity, files []UploadedFile) error
}

type vectorstoreService struct {
	store     *vectorstore.DiskStore
	embedder  embedding.EmbeddingProvider
	uploadDir string
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewVectorstoreService(
	store *vectorstore.DiskStore,
	embedder embedding.EmbeddingProvider,
	uploadDir string,
	pubSub *gochannel.GoChannel,
	topicName string,
	log logger.ILogger,
) IVectorstoreService {
	return &vectorstoreService{
		store:     store,
		embedder:  embedder,
		uploadDir: uploadDir,
		pubSub:    pubSub,
		topicName: topicName,
		logger:    log,
	}
}

func (s *vectorstoreService) CreateIndices(ctx context.Context, ident *entity.Identity, files []UploadedFile) error {
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}

	for _, file := range files {
		if err := s.indexFile(ctx, ident, file); err != nil {
			return fmt.Errorf("index %s: %w", file.Name, err)
		}
	}
	return nil
}

func (s *vectorstoreService) indexFile(ctx context.Context, ident *entity.Identity, file UploadedFile) error {
	// Persist the upload to a temp path first; the PDF reader needs a file
	// and the raw upload should never outlive indexing. The uuid prefix
	// keeps concurrent uploads of the same filename from sharing a path.
	tmpPath := filepath.Join(s.uploadDir, uuid.NewString()+"_"+utils.SafeKey(filepath.Base(file.Name)))
	if err := os.WriteFile(tmpPath, file.Data, 0644); err != nil {
		return fmt.Errorf("write upload: %w", err)
	}
	defer os.Remove(tmpPath)

	text, err := extractText(tmpPath, file.Name)
	if err != nil {
		return err
	}

	ix := vectorstore.New()
	for _, chunk := range utils.SplitText(text, indexChunkSize, indexChunkOverlap) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		embedded, err := s.embedder.Generate(chunk, indexTaskType)
		if err != nil {
			return fmt.Errorf("embed chunk: %w", err)
		}
		ix.Add(chunk, embedded.Embedding.Values, map[string]string{"source": file.Name})
	}

	name := vectorstore.IndexName(file.Name)
	if err := s.store.Save(ident.PartitionKey, name, ix); err != nil {
		return err
	}

	s.publishIndexed(ident, file.Name, name, ix.Len())
	return nil
}

func (s *vectorstoreService) publishIndexed(ident *entity.Identity, fileName, indexName string, chunks int) {
	if s.pubSub == nil {
		return
	}

	event := events.BaseEvent{
		Type: events.TypeDocumentIndexed,
		Data: map[string]interface{}{
			"partition":  ident.PartitionKey,
			"file_name":  fileName,
			"index_name": indexName,
			"chunks":     chunks,
		},
		OccurredAt: time.Now(),
	}
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	if err := s.pubSub.Publish(s.topicName, msg); err != nil {
		s.logger.Warn("vectorstore", "failed to publish index event", map[string]interface{}{"error": err.Error()})
	}
}

func extractText(path, originalName string) (string, error) {
	if strings.EqualFold(filepath.Ext(originalName), ".pdf") {
		return extractPdfText(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return string(data), nil
}

func extractPdfText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// skip unextractable pages rather than failing the whole document
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
