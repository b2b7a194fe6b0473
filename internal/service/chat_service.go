package service

import (
	"context"
	"errors"
	"fmt"

	"minima-be/internal/apperror"
	"minima-be/internal/config"
	"minima-be/internal/dto"
	"minima-be/internal/entity"
	"minima-be/internal/pkg/logger"
	"minima-be/pkg/llm"
	"minima-be/pkg/pipeline/relay"
	"minima-be/pkg/pipeline/retrieval"
	"minima-be/pkg/pipeline/window"
	"minima-be/pkg/vectorstore"
)

// ChatTurn is everything the controller needs around one generation: the
// prompt that goes to the model and the augmentation-free record that gets
// persisted once the stream has fully terminated.
type ChatTurn struct {
	ConversationId string
	Record         []entity.Message
}

type IChatService interface {
	// OpenStream runs the pre-generation pipeline (window partitioning and
	// retrieval augmentation) and starts the generator stream.
	OpenStream(ctx context.Context, ident *entity.Identity, req *dto.ChatRequest) (*relay.Stream, *ChatTurn, error)

	// CompleteTurn persists the finished exchange. Called only after the
	// stream has terminated and only when the client stayed connected.
	CompleteTurn(ctx context.Context, ident *entity.Identity, turn *ChatTurn, finalText string) error
}

type chatService struct {
	cfg         config.AIConfig
	webResults  int
	coordinator *retrieval.Coordinator
	relay       *relay.Relay
	history     IHistoryService
	logger      logger.ILogger
}

func NewChatService(
	aiCfg config.AIConfig,
	searchCfg config.SearchConfig,
	coordinator *retrieval.Coordinator,
	generationRelay *relay.Relay,
	history IHistoryService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		cfg:         aiCfg,
		webResults:  searchCfg.MaxResults,
		coordinator: coordinator,
		relay:       generationRelay,
		history:     history,
		logger:      log,
	}
}

func (s *chatService) OpenStream(ctx context.Context, ident *entity.Identity, req *dto.ChatRequest) (*relay.Stream, *ChatTurn, error) {
	messages := req.Messages
	if len(messages) == 0 || messages[len(messages)-1].Role != entity.RoleUser {
		return nil, nil, retrieval.ErrNoUserTurn
	}

	userTurn := messages[len(messages)-1]
	prior := messages[:len(messages)-1]

	// Trim the pre-augmentation history to the byte budget. Overflow is kept
	// for the persisted record but excluded from the live prompt.
	overflow, active := window.Partition(prior, s.cfg.ContextBudget)

	working := append(append([]entity.Message{}, active...), userTurn)

	// Web search first, documents second: each pass inserts immediately
	// before the trailing user turn, so document context ends up closest
	// to it.
	var err error
	if req.WebSearch {
		working, err = s.coordinator.AugmentWeb(ctx, working, s.webResults)
		if err != nil {
			return nil, nil, apperror.Upstreamf("web augmentation failed")
		}
	}
	if len(req.FileNames) > 0 {
		working, err = s.coordinator.AugmentDocuments(ctx, working, ident.PartitionKey, req.FileNames)
		if err != nil {
			if errors.Is(err, vectorstore.ErrIndexNotFound) {
				return nil, nil, fmt.Errorf("%v: %w", err, apperror.ErrNotFound)
			}
			return nil, nil, apperror.Upstreamf("document augmentation failed")
		}
	}

	stream, err := s.relay.Open(ctx, toPrompt(working))
	if err != nil {
		return nil, nil, apperror.Upstreamf("open generation stream")
	}

	turn := &ChatTurn{
		ConversationId: req.ConversationId,
		Record:         buildRecord(overflow, active, userTurn),
	}

	s.logger.Info("chat", "generation stream opened", map[string]interface{}{
		"identity":    ident.Username,
		"web_search":  req.WebSearch,
		"file_names":  req.FileNames,
		"prompt_size": len(working),
		"overflow":    len(overflow),
	})
	return stream, turn, nil
}

func (s *chatService) CompleteTurn(ctx context.Context, ident *entity.Identity, turn *ChatTurn, finalText string) error {
	if turn.ConversationId == "" {
		// client-managed save flow: the UI calls POST /history itself
		return nil
	}

	record := append(append([]entity.Message{}, turn.Record...),
		entity.TextMessage(entity.RoleAssistant, finalText))
	return s.history.Save(ctx, ident, turn.ConversationId, record)
}

// buildRecord reassembles the augmentation-free history: overflow first
// (chronological order), then the active window, then the new user turn.
// Non-text messages (image attachments) are not persisted, the user turn
// included.
func buildRecord(overflow, active []entity.Message, userTurn entity.Message) []entity.Message {
	record := make([]entity.Message, 0, len(overflow)+len(active)+1)
	for _, m := range overflow {
		if m.IsText() {
			record = append(record, m)
		}
	}
	for _, m := range active {
		if m.IsText() {
			record = append(record, m)
		}
	}
	if userTurn.IsText() {
		record = append(record, userTurn)
	}
	return record
}

// toPrompt flattens the working list into the provider's message format.
// Image parts carry no text and are dropped; providers take ordered text
// messages only.
func toPrompt(messages []entity.Message) []llm.Message {
	prompt := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		if !m.IsText() {
			continue
		}
		prompt = append(prompt, llm.Message{Role: m.Role, Content: m.Content.Text})
	}
	return prompt
}
