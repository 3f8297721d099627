package services

import (
	"context"
	"errors"
	"testing"

	"github.com/balasin/balasin/internal/models"
	"github.com/balasin/balasin/internal/utils"

	"github.com/stretchr/testify/require"
)

type chunkSearchCall struct {
	query string
	tag   *string
	limit int
}

type stubChunkRepo struct {
	searchResults [][]models.KnowledgeChunk // popped per Search call
	searchErr     error
	latestResult  []models.KnowledgeChunk
	latestErr     error

	searches    []chunkSearchCall
	latestCalls int
}

func (r *stubChunkRepo) Search(_ context.Context, _ string, query string, tag *string, limit int) ([]models.KnowledgeChunk, error) {
	r.searches = append(r.searches, chunkSearchCall{query: query, tag: tag, limit: limit})
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	if len(r.searchResults) == 0 {
		return nil, nil
	}
	out := r.searchResults[0]
	r.searchResults = r.searchResults[1:]
	return out, nil
}

func (r *stubChunkRepo) Latest(_ context.Context, _ string, limit int) ([]models.KnowledgeChunk, error) {
	r.latestCalls++
	return r.latestResult, r.latestErr
}

func chunk(id, content string) models.KnowledgeChunk {
	return models.KnowledgeChunk{ID: id, Content: content}
}

func TestKnowledgeRetrieve_TaggedHitStopsEarly(t *testing.T) {
	repo := &stubChunkRepo{
		searchResults: [][]models.KnowledgeChunk{{chunk("a", "stok tersedia")}},
	}
	svc := NewKnowledgeService(repo)

	rows, err := svc.Retrieve(context.Background(), "m1", "stok barang", SectorWarehouse)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.Len(t, repo.searches, 1)
	require.NotNil(t, repo.searches[0].tag)
	require.Equal(t, SectorWarehouse, *repo.searches[0].tag)
	require.Equal(t, 3, repo.searches[0].limit)
	require.Zero(t, repo.latestCalls)
}

func TestKnowledgeRetrieve_FallsThroughTagThenUntagged(t *testing.T) {
	repo := &stubChunkRepo{
		searchResults: [][]models.KnowledgeChunk{nil, {chunk("b", "jam buka")}},
	}
	svc := NewKnowledgeService(repo)

	rows, err := svc.Retrieve(context.Background(), "m1", "jam buka", SectorOwner)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.Len(t, repo.searches, 2)
	require.NotNil(t, repo.searches[0].tag)
	require.Nil(t, repo.searches[1].tag)
	require.Zero(t, repo.latestCalls)
}

func TestKnowledgeRetrieve_NoTagSkipsSecondSearch(t *testing.T) {
	repo := &stubChunkRepo{
		latestResult: []models.KnowledgeChunk{chunk("c", "profil toko")},
	}
	svc := NewKnowledgeService(repo)

	rows, err := svc.Retrieve(context.Background(), "m1", "halo", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// One untagged search missed, then straight to the latest-chunk fallback.
	require.Len(t, repo.searches, 1)
	require.Nil(t, repo.searches[0].tag)
	require.Equal(t, 1, repo.latestCalls)
}

func TestKnowledgeRetrieve_AllTiersEmpty(t *testing.T) {
	repo := &stubChunkRepo{}
	svc := NewKnowledgeService(repo)

	rows, err := svc.Retrieve(context.Background(), "m1", "apapun", SectorWarehouse)
	require.NoError(t, err)
	require.Empty(t, rows)
	require.Len(t, repo.searches, 2)
	require.Equal(t, 1, repo.latestCalls)
}

func TestKnowledgeRetrieve_SearchErrorSurfaces(t *testing.T) {
	repo := &stubChunkRepo{searchErr: errors.New("db down")}
	svc := NewKnowledgeService(repo)

	_, err := svc.Retrieve(context.Background(), "m1", "stok", SectorWarehouse)
	require.Error(t, err)
	require.True(t, utils.IsCode(err, utils.CodeInternal))
}

func TestKnowledgeRetrieve_RequiresMerchantID(t *testing.T) {
	svc := NewKnowledgeService(&stubChunkRepo{})

	_, err := svc.Retrieve(context.Background(), "", "stok", "")
	require.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestKnowledgeRetrieve_EmptyQueryGoesStraightToLatest(t *testing.T) {
	repo := &stubChunkRepo{
		latestResult: []models.KnowledgeChunk{chunk("d", "profil toko")},
	}
	svc := NewKnowledgeService(repo)

	// Captionless media carries no text to rank on.
	rows, err := svc.Retrieve(context.Background(), "m1", "   ", SectorWarehouse)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Empty(t, repo.searches)
	require.Equal(t, 1, repo.latestCalls)
}

func TestJoinContext(t *testing.T) {
	got := JoinContext([]models.KnowledgeChunk{
		chunk("a", "satu"),
		chunk("b", ""),
		chunk("c", "dua"),
	})
	require.Equal(t, "satu\n\n---\n\ndua", got)
}
