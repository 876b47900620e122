package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/repository/contract"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/repository/specification"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/repository/unitofwork"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/embedding"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/store"
)

// Config encapsulates retrieval parameters
type Config struct {
	DBThreshold    float64
	LogicThreshold float64
	TopK           int
}

// DefaultConfig returns default retrieval configuration
func DefaultConfig() Config {
	return Config{
		DBThreshold:    0.0,
		LogicThreshold: 0.35,
		TopK:           8,
	}
}

// Retriever handles vector search over the user's uploaded documents.
// Retrieval is best-effort: any failure degrades to an empty context so
// the assistant can still answer without grounding snippets.
type Retriever struct {
	provider embedding.Provider
	logger   *log.Logger
}

func NewRetriever(provider embedding.Provider, logger *log.Logger) *Retriever {
	return &Retriever{
		provider: provider,
		logger:   logger,
	}
}

// Retrieve runs vector search and returns filtered document snippets.
// Never returns an error to the caller, a failed retrieval yields nil.
func (r *Retriever) Retrieve(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	userId uuid.UUID,
	query string,
	config Config,
) []store.Document {

	embeddingRes, err := r.provider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		r.logger.Printf("[WARN] Embedding generation failed, skipping retrieval: %v", err)
		return nil
	}

	scoredResults, err := uow.DocumentEmbeddingRepository().SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		config.TopK,
		userId,
		config.DBThreshold,
	)
	if err != nil {
		r.logger.Printf("[WARN] Vector search failed, skipping retrieval: %v", err)
		return nil
	}

	candidates := r.filterCandidates(scoredResults, config.LogicThreshold)

	r.logger.Printf("[DEBUG] Retrieval: %d raw, %d kept", len(scoredResults), len(candidates))

	if err := r.hydrateCandidates(ctx, uow, candidates); err != nil {
		r.logger.Printf("[WARN] Failed to hydrate candidates: %v", err)
	}

	return candidates
}

// filterCandidates keeps one chunk per document above the score threshold
func (r *Retriever) filterCandidates(
	results []*contract.ScoredDocumentEmbedding,
	threshold float64,
) []store.Document {

	var candidates []store.Document
	seen := make(map[string]bool)

	for _, res := range results {
		if res.Similarity < threshold {
			continue
		}
		docId := res.Embedding.DocumentId.String()
		if seen[docId] {
			continue
		}
		candidates = append(candidates, store.Document{
			ID:      docId,
			Content: res.Embedding.Chunk,
			Score:   float32(res.Similarity),
		})
		seen[docId] = true
	}

	return candidates
}

func (r *Retriever) hydrateCandidates(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	candidates []store.Document,
) error {

	if len(candidates) == 0 {
		return nil
	}

	docIds := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		docIds[i] = uuid.MustParse(c.ID)
	}

	docs, err := uow.DocumentRepository().FindAll(ctx, specification.ByIDs{IDs: docIds})
	if err != nil {
		return err
	}

	titleMap := make(map[string]string)
	for _, d := range docs {
		titleMap[d.Id.String()] = d.Title
	}

	for i := range candidates {
		if title, ok := titleMap[candidates[i].ID]; ok {
			candidates[i].Title = title
		} else {
			candidates[i].Title = "Dokumen"
		}
	}
	return nil
}

// BuildContext formats retrieved snippets into a prompt context block.
// Returns "" when nothing was retrieved.
func BuildContext(docs []store.Document) string {
	if len(docs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&b, "[Dokumen %d: %s]\n%s\n\n", i+1, d.Title, strings.TrimSpace(d.Content))
	}
	return strings.TrimSpace(b.String())
}
