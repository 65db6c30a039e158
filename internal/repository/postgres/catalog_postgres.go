package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"mediaapi/internal/model"
	"mediaapi/internal/repository"
)

// DBProvider returns the shared connection pool, connecting on first use.
type DBProvider func(ctx context.Context) (*sql.DB, error)

// CatalogPostgres is a PostgreSQL implementation of repository.CatalogRepository.
// Categories and story payloads are stored as JSONB.
type CatalogPostgres struct {
	db DBProvider
}

// NewCatalogPostgres creates a new CatalogPostgres repository.
func NewCatalogPostgres(db DBProvider) *CatalogPostgres {
	return &CatalogPostgres{db: db}
}

var _ repository.CatalogRepository = (*CatalogPostgres)(nil)

const (
	reelColumns  = `id, title, description, categories, thumbnail, video, created_at, updated_at`
	storyColumns = `id, title, description, categories, thumbnail, video, icon, story, created_at, updated_at`
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateReel inserts a reel row with a fresh UUID and returns the stored record.
func (r *CatalogPostgres) CreateReel(ctx context.Context, reel *model.Reel) (*model.Reel, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := encodeCategories(reel.Categories)
	if err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO reels (` + reelColumns + `)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8)
		RETURNING ` + reelColumns
	row := db.QueryRowContext(ctx, q,
		uuid.NewString(),
		reel.Title,
		reel.Description,
		cats,
		reel.Thumbnail,
		reel.Video,
		reel.CreatedAt,
		reel.UpdatedAt,
	)
	return scanReel(row)
}

// CreateStory inserts a story row; empty optional fields are stored as NULL.
func (r *CatalogPostgres) CreateStory(ctx context.Context, story *model.Story) (*model.Story, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := encodeCategories(story.Categories)
	if err != nil {
		return nil, err
	}
	var payload any
	if len(story.Story) > 0 {
		payload = string(story.Story)
	}

	const q = `
		INSERT INTO stories (` + storyColumns + `)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8::jsonb, $9, $10)
		RETURNING ` + storyColumns
	row := db.QueryRowContext(ctx, q,
		uuid.NewString(),
		story.Title,
		story.Description,
		cats,
		nullString(story.Thumbnail),
		nullString(story.Video),
		nullString(story.Icon),
		payload,
		story.CreatedAt,
		story.UpdatedAt,
	)
	return scanStory(row)
}

// ListReels returns reels newest first, optionally filtered by category.
func (r *CatalogPostgres) ListReels(ctx context.Context, lq repository.ListQuery) ([]model.Reel, error) {
	rows, err := r.list(ctx, "reels", reelColumns, lq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Reel, 0)
	for rows.Next() {
		reel, err := scanReel(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *reel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListStories returns stories newest first, optionally filtered by category.
func (r *CatalogPostgres) ListStories(ctx context.Context, lq repository.ListQuery) ([]model.Story, error) {
	rows, err := r.list(ctx, "stories", storyColumns, lq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Story, 0)
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *story)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Ping connects if needed and checks the pool.
func (r *CatalogPostgres) Ping(ctx context.Context) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// list builds the shared listing query. table and columns are package
// constants, never caller input.
func (r *CatalogPostgres) list(ctx context.Context, table, columns string, lq repository.ListQuery) (*sql.Rows, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	if lq.Category == "" {
		q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, id DESC LIMIT $1`, columns, table)
		return db.QueryContext(ctx, q, lq.EffectiveLimit())
	}

	filter, err := encodeCategories([]string{lq.Category})
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE categories @> $1::jsonb ORDER BY created_at DESC, id DESC LIMIT $2`, columns, table)
	return db.QueryContext(ctx, q, filter, lq.EffectiveLimit())
}

func scanReel(s rowScanner) (*model.Reel, error) {
	var (
		out  model.Reel
		cats []byte
	)
	if err := s.Scan(
		&out.ID,
		&out.Title,
		&out.Description,
		&cats,
		&out.Thumbnail,
		&out.Video,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	categories, err := decodeCategories(cats)
	if err != nil {
		return nil, err
	}
	out.Categories = categories
	return &out, nil
}

func scanStory(s rowScanner) (*model.Story, error) {
	var (
		out                    model.Story
		cats, payload          []byte
		thumbnail, video, icon sql.NullString
	)
	if err := s.Scan(
		&out.ID,
		&out.Title,
		&out.Description,
		&cats,
		&thumbnail,
		&video,
		&icon,
		&payload,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	categories, err := decodeCategories(cats)
	if err != nil {
		return nil, err
	}
	out.Categories = categories
	out.Thumbnail = thumbnail.String
	out.Video = video.String
	out.Icon = icon.String
	if len(payload) > 0 {
		out.Story = json.RawMessage(payload)
	}
	return &out, nil
}

func encodeCategories(cats []string) (string, error) {
	if cats == nil {
		cats = []string{}
	}
	b, err := json.Marshal(cats)
	if err != nil {
		return "", fmt.Errorf("encode categories: %w", err)
	}
	return string(b), nil
}

func decodeCategories(b []byte) ([]string, error) {
	cats := []string{}
	if len(b) == 0 {
		return cats, nil
	}
	if err := json.Unmarshal(b, &cats); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return cats, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
