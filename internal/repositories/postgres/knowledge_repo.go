package postgres

import (
	"context"

	"github.com/balasin/balasin/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KnowledgeRepo interface {
	// Search runs ranked full-text search over ready chunks. tag narrows by
	// sector when non-nil.
	Search(ctx context.Context, merchantID, query string, tag *string, limit int) ([]models.KnowledgeChunk, error)
	// Latest returns the most recently created ready chunks, unranked.
	Latest(ctx context.Context, merchantID string, limit int) ([]models.KnowledgeChunk, error)
}

type knowledgeRepo struct {
	db *gorm.DB
}

func NewKnowledgeRepo(db *gorm.DB) KnowledgeRepo {
	return &knowledgeRepo{db: db}
}

func (r *knowledgeRepo) Search(ctx context.Context, merchantID, query string, tag *string, limit int) ([]models.KnowledgeChunk, error) {
	if limit <= 0 {
		limit = 3
	}

	// 'simple' config: chunks are mostly Indonesian, which has no dedicated
	// text search configuration.
	q := r.db.WithContext(ctx).
		Model(&models.KnowledgeChunk{}).
		Where("merchant_id = ? AND status = ? AND content <> ''", merchantID, models.ChunkReady).
		Where("to_tsvector('simple', content) @@ plainto_tsquery('simple', ?)", query)

	if tag != nil {
		q = q.Where("sector_tag = ?", *tag)
	}

	var rows []models.KnowledgeChunk
	err := q.
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "ts_rank(to_tsvector('simple', content), plainto_tsquery('simple', ?)) DESC",
			Vars:               []interface{}{query},
			WithoutParentheses: true,
		}}).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *knowledgeRepo) Latest(ctx context.Context, merchantID string, limit int) ([]models.KnowledgeChunk, error) {
	if limit <= 0 {
		limit = 3
	}
	var rows []models.KnowledgeChunk
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND status = ? AND content <> ''", merchantID, models.ChunkReady).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
