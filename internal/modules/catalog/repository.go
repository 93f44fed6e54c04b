package catalog

import (
	"context"
	"time"
)

// FeedLimit caps how many rows a live listing reads.
const FeedLimit = 100

// FeedRow is one row of the hosted products table.
type FeedRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Slug        string    `db:"slug"`
	Description string    `db:"description"`
	PriceCents  int       `db:"price_cents"`
	Images      []string  `db:"images"`
	Team        string    `db:"team"`
	Sizes       []string  `db:"sizes"`
	Stock       int       `db:"stock"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
}

// Feed reads the live product table.
type Feed interface {
	// ListActive returns active rows, newest first.
	ListActive(ctx context.Context, limit int) ([]FeedRow, error)
	// GetBySlug returns ErrProductNotFound when no active row matches.
	GetBySlug(ctx context.Context, slug string) (*FeedRow, error)
}

const (
	defaultRating = 4.5
	unknownTeam   = "Unknown Team"
)

var defaultSizes = []string{"S", "M", "L", "XL"}

// ToProduct normalises a feed row into the storefront's product shape.
func (row FeedRow) ToProduct() Product {
	id := row.Slug
	if id == "" {
		id = row.ID
	}
	team := row.Team
	if team == "" {
		team = unknownTeam
	}
	sport := InferSport(row.Name, row.Team, row.Slug)

	images := append([]string(nil), row.Images...)
	if len(images) == 0 {
		images = CoverPair(sport)
	}
	sizes := append([]string(nil), row.Sizes...)
	if len(sizes) == 0 {
		sizes = append([]string(nil), defaultSizes...)
	}

	return Product{
		ID:          id,
		Name:        row.Name,
		Team:        team,
		Sport:       sport,
		Price:       float64(row.PriceCents) / 100,
		Rating:      defaultRating,
		Images:      images,
		Sizes:       sizes,
		Description: row.Description,
	}
}
