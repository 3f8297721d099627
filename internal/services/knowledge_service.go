package services

import (
	"context"
	"strings"

	"github.com/balasin/balasin/internal/models"
	pgrepo "github.com/balasin/balasin/internal/repositories/postgres"
	"github.com/balasin/balasin/internal/utils"
)

// retrievalLimit is K: the number of chunks each tier asks for.
const retrievalLimit = 3

// KnowledgeService retrieves grounding context with tiered fallback:
//  1. ranked search scoped to the classified sector tag
//  2. ranked search without the tag (only if a tag was applied)
//  3. latest ready chunks, unranked
//
// An empty query (captionless media) has nothing to rank on and goes
// straight to tier 3. An empty result after all tiers means the caller must
// escalate: replies are never produced from an empty context.
type KnowledgeService interface {
	Retrieve(ctx context.Context, merchantID, query, sectorTag string) ([]models.KnowledgeChunk, error)
}

type knowledgeService struct {
	chunks pgrepo.KnowledgeRepo
}

func NewKnowledgeService(chunks pgrepo.KnowledgeRepo) KnowledgeService {
	return &knowledgeService{chunks: chunks}
}

func (s *knowledgeService) Retrieve(ctx context.Context, merchantID, query, sectorTag string) ([]models.KnowledgeChunk, error) {
	const op = "KnowledgeService.Retrieve"

	if merchantID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "merchant_id is required", nil)
	}

	var rows []models.KnowledgeChunk
	var err error

	if strings.TrimSpace(query) != "" {
		var tag *string
		if sectorTag != "" {
			tag = &sectorTag
		}

		rows, err = s.chunks.Search(ctx, merchantID, query, tag, retrievalLimit)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "ranked search failed", err)
		}

		if len(rows) == 0 && tag != nil {
			rows, err = s.chunks.Search(ctx, merchantID, query, nil, retrievalLimit)
			if err != nil {
				return nil, utils.E(utils.CodeInternal, op, "unscoped search failed", err)
			}
		}
	}

	if len(rows) == 0 {
		rows, err = s.chunks.Latest(ctx, merchantID, retrievalLimit)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "latest-chunk fallback failed", err)
		}
	}

	return rows, nil
}

// JoinContext renders retrieved chunks into the prompt context block.
func JoinContext(chunks []models.KnowledgeChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c.Content != "" {
			parts = append(parts, c.Content)
		}
	}
	return strings.Join(parts, "\n\n---\n\n")
}
