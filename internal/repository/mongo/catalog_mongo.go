package mongo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mediaapi/internal/model"
	"mediaapi/internal/repository"
)

const (
	reelsCollection   = "reels"
	storiesCollection = "stories"
)

// DatabaseProvider returns the catalog database, connecting on first use.
type DatabaseProvider func(ctx context.Context) (*mongo.Database, error)

// CatalogMongo is a MongoDB implementation of repository.CatalogRepository.
type CatalogMongo struct {
	db DatabaseProvider
}

// NewCatalogMongo creates a new CatalogMongo repository.
func NewCatalogMongo(db DatabaseProvider) *CatalogMongo {
	return &CatalogMongo{db: db}
}

var _ repository.CatalogRepository = (*CatalogMongo)(nil)

type reelDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Categories  []string           `bson:"categories"`
	Thumbnail   string             `bson:"thumbnail"`
	Video       string             `bson:"video"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type storyDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Categories  []string           `bson:"categories"`
	Thumbnail   string             `bson:"thumbnail,omitempty"`
	Video       string             `bson:"video,omitempty"`
	Icon        string             `bson:"icon,omitempty"`
	Story       *bson.RawValue     `bson:"story,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// CreateReel inserts a reel with a fresh ObjectID.
func (r *CatalogMongo) CreateReel(ctx context.Context, reel *model.Reel) (*model.Reel, error) {
	col, err := r.collection(ctx, reelsCollection)
	if err != nil {
		return nil, err
	}

	doc := reelDoc{
		ID:          primitive.NewObjectID(),
		Title:       reel.Title,
		Description: reel.Description,
		Categories:  nonNil(reel.Categories),
		Thumbnail:   reel.Thumbnail,
		Video:       reel.Video,
		CreatedAt:   reel.CreatedAt,
		UpdatedAt:   reel.UpdatedAt,
	}
	if _, err := col.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

// CreateStory inserts a story. The JSON payload is stored as native BSON.
func (r *CatalogMongo) CreateStory(ctx context.Context, story *model.Story) (*model.Story, error) {
	col, err := r.collection(ctx, storiesCollection)
	if err != nil {
		return nil, err
	}

	payload, err := encodePayload(story.Story)
	if err != nil {
		return nil, err
	}
	doc := storyDoc{
		ID:          primitive.NewObjectID(),
		Title:       story.Title,
		Description: story.Description,
		Categories:  nonNil(story.Categories),
		Thumbnail:   story.Thumbnail,
		Video:       story.Video,
		Icon:        story.Icon,
		Story:       payload,
		CreatedAt:   story.CreatedAt,
		UpdatedAt:   story.UpdatedAt,
	}
	if _, err := col.InsertOne(ctx, doc); err != nil {
		return nil, err
	}

	out := model.Story{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
		Categories:  doc.Categories,
		Thumbnail:   doc.Thumbnail,
		Video:       doc.Video,
		Icon:        doc.Icon,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if payload != nil {
		out.Story = story.Story
	}
	return &out, nil
}

// ListReels returns reels newest first, optionally filtered by category.
func (r *CatalogMongo) ListReels(ctx context.Context, q repository.ListQuery) ([]model.Reel, error) {
	cur, err := r.find(ctx, reelsCollection, q)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]model.Reel, 0)
	for cur.Next(ctx) {
		var d reelDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		items = append(items, d.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListStories returns stories newest first, optionally filtered by category.
func (r *CatalogMongo) ListStories(ctx context.Context, q repository.ListQuery) ([]model.Story, error) {
	cur, err := r.find(ctx, storiesCollection, q)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]model.Story, 0)
	for cur.Next(ctx) {
		var d storyDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		s, err := d.toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Ping connects if needed and pings the deployment.
func (r *CatalogMongo) Ping(ctx context.Context) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, nil)
}

func (r *CatalogMongo) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

func (r *CatalogMongo) find(ctx context.Context, name string, q repository.ListQuery) (*mongo.Cursor, error) {
	col, err := r.collection(ctx, name)
	if err != nil {
		return nil, err
	}

	filter := bson.M{}
	if q.Category != "" {
		filter["categories"] = q.Category
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(q.EffectiveLimit()))
	return col.Find(ctx, filter, opts)
}

func (d reelDoc) toModel() model.Reel {
	return model.Reel{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Categories:  nonNil(d.Categories),
		Thumbnail:   d.Thumbnail,
		Video:       d.Video,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (d storyDoc) toModel() (model.Story, error) {
	payload, err := decodePayload(d.Story)
	if err != nil {
		return model.Story{}, err
	}
	return model.Story{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Categories:  nonNil(d.Categories),
		Thumbnail:   d.Thumbnail,
		Video:       d.Video,
		Icon:        d.Icon,
		Story:       payload,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

// encodePayload converts client JSON into a BSON value. Empty or null
// payloads are not stored.
func encodePayload(raw json.RawMessage) (*bson.RawValue, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode story payload: %w", err)
	}
	if v == nil {
		return nil, nil
	}
	t, data, err := bson.MarshalValue(v)
	if err != nil {
		return nil, fmt.Errorf("encode story payload: %w", err)
	}
	return &bson.RawValue{Type: t, Value: data}, nil
}

// decodePayload renders a stored BSON value back to relaxed JSON.
func decodePayload(rv *bson.RawValue) (json.RawMessage, error) {
	if rv == nil || rv.Type == bson.TypeNull || rv.Type == 0 {
		return nil, nil
	}
	wrapped, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: *rv}}, false, false)
	if err != nil {
		return nil, fmt.Errorf("render story payload: %w", err)
	}
	var out struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(wrapped, &out); err != nil {
		return nil, fmt.Errorf("render story payload: %w", err)
	}
	return out.V, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
