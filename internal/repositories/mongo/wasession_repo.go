package mongo

import (
	"context"
	"errors"

	"github.com/balasin/balasin/internal/models"
	"github.com/balasin/balasin/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type WaSessionRepository interface {
	// GetConnected resolves the connected session bound to an instance id.
	// Returns utils.ErrNotFound when the instance has no connected session.
	GetConnected(ctx context.Context, instanceID string) (*models.WaSession, error)
}

type waSessionRepo struct {
	col *mongo.Collection
}

func NewWaSessionRepo(db *mongo.Database) WaSessionRepository {
	return &waSessionRepo{col: db.Collection("wa_sessions")}
}

func (r *waSessionRepo) GetConnected(ctx context.Context, instanceID string) (*models.WaSession, error) {
	var s models.WaSession
	err := r.col.FindOne(ctx, bson.M{
		"instance_id": instanceID,
		"status":      models.WaSessionConnected,
	}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}
