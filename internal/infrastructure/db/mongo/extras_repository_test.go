package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

// fakeCollection keeps the single replaced document in memory.
type fakeCollection struct {
	stored     interface{}
	filter     interface{}
	opts       []*options.ReplaceOptions
	findErr    error
	replaceErr error
}

func (c *fakeCollection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	c.filter = filter
	if c.findErr != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, c.findErr, nil)
	}
	if c.stored == nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(c.stored, nil, nil)
}

func (c *fakeCollection) ReplaceOne(_ context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	c.filter = filter
	c.opts = opts
	if c.replaceErr != nil {
		return nil, c.replaceErr
	}
	c.stored = replacement
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func newTestRepository(coll *fakeCollection) *ExtrasRepository {
	return &ExtrasRepository{
		coll: coll,
		ping: func(context.Context) error { return nil },
		now:  func() time.Time { return time.Unix(1700000000, 0) },
	}
}

func strPtr(s string) *string { return &s }

func TestExtrasRepository_SaveUpsertsSingleDocument(t *testing.T) {
	coll := &fakeCollection{}
	repo := newTestRepository(coll)

	doc := domain.NewExtrasDocument()
	doc.Clients["42"] = &domain.ClientExtras{NumeroTva: strPtr("FR123")}
	if err := repo.Save(context.Background(), doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	filter, ok := coll.filter.(bson.M)
	if !ok || filter["_id"] != extrasDocumentID {
		t.Fatalf("unexpected filter: %#v", coll.filter)
	}
	if len(coll.opts) != 1 || coll.opts[0].Upsert == nil || !*coll.opts[0].Upsert {
		t.Fatalf("replace must upsert: %#v", coll.opts)
	}

	raw, err := bson.Marshal(coll.stored)
	if err != nil {
		t.Fatalf("marshal replacement: %v", err)
	}
	var got struct {
		ID         string              `bson:"_id"`
		Clients    map[string]bson.Raw `bson:"clients"`
		Formateurs bson.Raw            `bson:"formateurs"`
		Sessions   bson.Raw            `bson:"sessions"`
		UpdatedAt  int64               `bson:"updated_at"`
	}
	if err := bson.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal replacement: %v", err)
	}
	if got.ID != "extras" {
		t.Fatalf("_id = %q, want extras", got.ID)
	}
	if got.UpdatedAt != 1700000000 {
		t.Fatalf("updated_at = %d", got.UpdatedAt)
	}
	client, ok := got.Clients["42"]
	if !ok {
		t.Fatalf("client 42 missing: %v", got.Clients)
	}
	if v := client.Lookup("numeroTva").StringValue(); v != "FR123" {
		t.Fatalf("numeroTva = %q", v)
	}
	if _, err := client.LookupErr("siret"); err == nil {
		t.Fatalf("absent siret must be omitted")
	}
	if got.Formateurs == nil || got.Sessions == nil {
		t.Fatalf("empty kinds must be stored as documents")
	}
}

func TestExtrasRepository_LoadRoundTrip(t *testing.T) {
	coll := &fakeCollection{}
	repo := newTestRepository(coll)
	ctx := context.Background()

	doc := domain.NewExtrasDocument()
	doc.Formateurs["5"] = &domain.FormateurExtras{SousTraitant: new(bool), Siret: strPtr("11111111111111")}
	if err := repo.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := loaded.Formateurs["5"]
	if f == nil || f.SousTraitant == nil || *f.SousTraitant || *f.Siret != "11111111111111" || f.NumeroTva != nil {
		t.Fatalf("unexpected formateur after reload: %+v", f)
	}
	if loaded.Clients == nil || loaded.Sessions == nil {
		t.Fatalf("loaded document not normalized: %+v", loaded)
	}
}

func TestExtrasRepository_LoadMissingIsEmpty(t *testing.T) {
	repo := newTestRepository(&fakeCollection{})

	doc, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Len() != 0 {
		t.Fatalf("expected empty document, got %d entries", doc.Len())
	}
}

func TestExtrasRepository_Errors(t *testing.T) {
	boom := errors.New("no reachable servers")
	repo := newTestRepository(&fakeCollection{findErr: boom, replaceErr: boom})

	if _, err := repo.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Load: %v", err)
	}
	if err := repo.Save(context.Background(), domain.NewExtrasDocument()); !errors.Is(err, boom) {
		t.Fatalf("Save: %v", err)
	}
}
