package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

const (
	extrasCollection = "extras"
	extrasDocumentID = "extras"
)

// collection is the part of *mongo.Collection the repository uses.
type collection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
}

// ExtrasRepository keeps the whole extras document in a single MongoDB
// document, replaced on every save.
type ExtrasRepository struct {
	coll collection
	ping func(ctx context.Context) error
	now  func() time.Time
}

func NewExtrasRepository(db *mongo.Database) *ExtrasRepository {
	return &ExtrasRepository{
		coll: db.Collection(extrasCollection),
		ping: func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
		now:  time.Now,
	}
}

type mongoExtras struct {
	ID         string                             `bson:"_id"`
	Clients    map[string]*domain.ClientExtras    `bson:"clients"`
	Formateurs map[string]*domain.FormateurExtras `bson:"formateurs"`
	Sessions   map[string]*domain.SessionExtras   `bson:"sessions"`
	UpdatedAt  int64                              `bson:"updated_at"`
}

func (r *ExtrasRepository) Load(ctx context.Context) (*domain.ExtrasDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var me mongoExtras
	if err := r.coll.FindOne(ctx, bson.M{"_id": extrasDocumentID}).Decode(&me); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.NewExtrasDocument(), nil
		}
		return nil, fmt.Errorf("find extras: %w", err)
	}

	doc := &domain.ExtrasDocument{
		Clients:    me.Clients,
		Formateurs: me.Formateurs,
		Sessions:   me.Sessions,
	}
	doc.Normalize()
	return doc, nil
}

func (r *ExtrasRepository) Save(ctx context.Context, doc *domain.ExtrasDocument) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	me := mongoExtras{
		ID:         extrasDocumentID,
		Clients:    doc.Clients,
		Formateurs: doc.Formateurs,
		Sessions:   doc.Sessions,
		UpdatedAt:  r.now().UTC().Unix(),
	}

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": extrasDocumentID}, me, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace extras: %w", err)
	}
	return nil
}

// Ping checks connectivity of the underlying client.
func (r *ExtrasRepository) Ping(ctx context.Context) error {
	return r.ping(ctx)
}
