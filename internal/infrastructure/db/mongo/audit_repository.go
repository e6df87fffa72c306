package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// AuditRepository implements ports.AuditRepository using MongoDB. The
// activation trail lives outside the relational store; it is append-only
// and never read back by the license state machine.
type AuditRepository struct {
	db *mongo.Database
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{db: db}
}

// InsertEvent persists one activation attempt to the activation_events
// collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.ActivationEvent) error {
	doc := bson.M{
		"key":          event.Key,
		"app_id":       event.AppID,
		"outcome":      event.Outcome,
		"source":       event.Source,
		"timestamp":    event.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.ClientIP != "" {
		doc["client_ip"] = event.ClientIP
	}

	_, err := r.db.Collection("activation_events").InsertOne(ctx, doc)
	return err
}
