// Package retrieval augments a conversation with retrieved context before it
// reaches the generator. Two sources exist, both optional: live web search
// and per-user document indices. Augmentation is rebuilt on every request and
// never persisted as conversation state.
package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"minima-be/internal/entity"
	"minima-be/pkg/embedding"
	"minima-be/pkg/llm"
	"minima-be/pkg/utils"
	"minima-be/pkg/vectorstore"
	"minima-be/pkg/websearch"
)

const (
	webTopK          = 7
	documentTopK     = 5
	webChunkSize     = 1000
	webChunkOverlap  = 100
	documentTaskType = "RETRIEVAL_DOCUMENT"
	queryTaskType    = "RETRIEVAL_QUERY"

	documentSummary = "Here are some related documents"
	webSummary      = "Here are some related web search results"

	queryInstruction = "Based on the conversation above, write a compact web search query " +
		"for the latest user request. Respond with the query text only, nothing else."
)

// ErrNoUserTurn is returned when the working message list does not end with a
// plain-text user turn to retrieve against.
var ErrNoUserTurn = errors.New("conversation does not end with a user message")

// QueryGenerator produces the web search query from the conversation.
type QueryGenerator interface {
	Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error)
}

// Searcher returns at most max search hits for a query.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]websearch.SearchResult, error)
}

// PageFetcher downloads result pages and extracts their visible text.
type PageFetcher interface {
	FetchAll(ctx context.Context, urls []string) []string
}

// DocumentRetriever answers similarity queries against named per-partition
// document indices.
type DocumentRetriever interface {
	Retrieve(partition string, fileNames []string, query string, k int) ([]vectorstore.Result, error)
}

type Coordinator struct {
	generator QueryGenerator
	searcher  Searcher
	fetcher   PageFetcher
	documents DocumentRetriever
	embedder  embedding.EmbeddingProvider
}

func NewCoordinator(
	generator QueryGenerator,
	searcher Searcher,
	fetcher PageFetcher,
	documents DocumentRetriever,
	embedder embedding.EmbeddingProvider,
) *Coordinator {
	return &Coordinator{
		generator: generator,
		searcher:  searcher,
		fetcher:   fetcher,
		documents: documents,
		embedder:  embedder,
	}
}

// AugmentWeb runs the web search mode: generate a query from the
// conversation, search, fetch and chunk the result pages, index the chunks
// transiently and inject the best matches ahead of the trailing user turn.
func (c *Coordinator) AugmentWeb(ctx context.Context, messages []entity.Message, maxResults int) ([]entity.Message, error) {
	lastUser, err := trailingUserText(messages)
	if err != nil {
		return nil, err
	}

	query, err := c.generateQuery(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate search query: %w", err)
	}

	hits, err := c.searcher.Search(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	if len(hits) == 0 {
		return messages, nil
	}

	urls := make([]string, len(hits))
	for i, hit := range hits {
		urls[i] = hit.URL
	}

	transient := vectorstore.New()
	for i, text := range c.fetcher.FetchAll(ctx, urls) {
		if text == "" {
			continue
		}
		for _, chunk := range utils.SplitText(text, webChunkSize, webChunkOverlap) {
			embedded, err := c.embedder.Generate(chunk, documentTaskType)
			if err != nil {
				return nil, fmt.Errorf("embed web chunk: %w", err)
			}
			transient.Add(chunk, embedded.Embedding.Values, map[string]string{"source": urls[i]})
		}
	}
	if transient.Len() == 0 {
		return messages, nil
	}

	embedded, err := c.embedder.Generate(lastUser, queryTaskType)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results := transient.Query(embedded.Embedding.Values, webTopK)
	return injectResults(messages, webSummary, results)
}

// AugmentDocuments runs the document mode against the caller's partition.
// A missing index fails the whole request (vectorstore.ErrIndexNotFound);
// partial augmentation is never served.
func (c *Coordinator) AugmentDocuments(ctx context.Context, messages []entity.Message, partition string, fileNames []string) ([]entity.Message, error) {
	lastUser, err := trailingUserText(messages)
	if err != nil {
		return nil, err
	}

	results, err := c.documents.Retrieve(partition, fileNames, lastUser, documentTopK)
	if err != nil {
		return nil, err
	}

	return injectResults(messages, documentSummary, results)
}

func (c *Coordinator) generateQuery(ctx context.Context, messages []entity.Message) (string, error) {
	history := make([]llm.Message, 0, len(messages)+1)
	for _, m := range messages {
		if !m.IsText() {
			continue
		}
		history = append(history, llm.Message{Role: m.Role, Content: m.Content.Text})
	}
	history = append(history, llm.Message{Role: entity.RoleSystem, Content: queryInstruction})

	raw, err := c.generator.Chat(ctx, history, llm.WithMaxTokens(64))
	if err != nil {
		return "", err
	}

	query := SanitizeQuery(raw)
	if query == "" {
		return "", errors.New("empty search query")
	}
	return query, nil
}

// SanitizeQuery strips everything outside [A-Za-z0-9 ] and collapses the
// surrounding whitespace, so model output can be passed to the search
// provider verbatim.
func SanitizeQuery(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// injectResults rewrites the working list so the augmentation always sits
// immediately before the triggering user turn: the trailing user message is
// removed, a summary system message and a system message carrying the
// serialized results are appended, then the user message is re-appended.
func injectResults(messages []entity.Message, summary string, results interface{}) ([]entity.Message, error) {
	serialized, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("serialize retrieval results: %w", err)
	}

	last := messages[len(messages)-1]
	out := make([]entity.Message, 0, len(messages)+2)
	out = append(out, messages[:len(messages)-1]...)
	out = append(out,
		entity.TextMessage(entity.RoleSystem, summary),
		entity.TextMessage(entity.RoleSystem, string(serialized)),
		last,
	)
	return out, nil
}

func trailingUserText(messages []entity.Message) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoUserTurn
	}
	last := messages[len(messages)-1]
	if last.Role != entity.RoleUser || !last.IsText() {
		return "", ErrNoUserTurn
	}
	return last.Content.Text, nil
}
