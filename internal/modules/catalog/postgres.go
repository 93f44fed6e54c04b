package catalog

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

type postgresFeed struct{ db *sqlx.DB }

func NewPostgresFeed(db *sqlx.DB) Feed { return &postgresFeed{db: db} }

type feedRecord struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Slug        sql.NullString `db:"slug"`
	Description sql.NullString `db:"description"`
	PriceCents  int            `db:"price_cents"`
	Images      pq.StringArray `db:"images"`
	Team        sql.NullString `db:"team"`
	Sizes       pq.StringArray `db:"sizes"`
	Stock       sql.NullInt64  `db:"stock"`
	IsActive    sql.NullBool   `db:"is_active"`
	CreatedAt   sql.NullTime   `db:"created_at"`
}

func (r feedRecord) row() FeedRow {
	return FeedRow{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug.String,
		Description: r.Description.String,
		PriceCents:  r.PriceCents,
		Images:      []string(r.Images),
		Team:        r.Team.String,
		Sizes:       []string(r.Sizes),
		Stock:       int(r.Stock.Int64),
		IsActive:    r.IsActive.Bool,
		CreatedAt:   r.CreatedAt.Time,
	}
}

const feedColumns = `id::text AS id, name, slug, description, price_cents, images, team, sizes, stock, is_active, created_at`

func (f *postgresFeed) ListActive(ctx context.Context, limit int) ([]FeedRow, error) {
	if limit <= 0 || limit > FeedLimit {
		limit = FeedLimit
	}
	var records []feedRecord
	err := f.db.SelectContext(ctx, &records, `
		SELECT `+feedColumns+`
		FROM products WHERE is_active = true
		ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing products")
	}
	rows := make([]FeedRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.row())
	}
	return rows, nil
}

func (f *postgresFeed) GetBySlug(ctx context.Context, slug string) (*FeedRow, error) {
	var rec feedRecord
	err := f.db.GetContext(ctx, &rec, `
		SELECT `+feedColumns+`
		FROM products WHERE is_active = true AND (slug = $1 OR id::text = $1)
		LIMIT 1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading product %s", slug)
	}
	row := rec.row()
	return &row, nil
}
