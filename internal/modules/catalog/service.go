package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var ErrProductNotFound = errors.New("product not found")

// DefaultSectionSize is how many items the featured and trending rows show.
const DefaultSectionSize = 6

const relatedSize = 4

// Service defines catalog business logic.
type Service interface {
	ListProducts(ctx context.Context) (Listing, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	// Lookup resolves an id without I/O, from the last live listing or the
	// bundled table.
	Lookup(id string) (Product, bool)
	Featured(ctx context.Context, n int) ([]Product, error)
	Trending(ctx context.Context, n int) ([]Product, error)
	Related(ctx context.Context, id string, n int) ([]Product, error)
	Search(ctx context.Context, f Filter) ([]Product, error)
	Facets(ctx context.Context) (Facets, error)
}

type service struct {
	feed   Feed
	logger log.FieldLogger

	mu     sync.RWMutex
	recent map[string]Product
}

// NewService builds the catalog. A nil feed serves the bundled table only.
func NewService(feed Feed, logger log.FieldLogger) Service {
	return &service{feed: feed, logger: logger, recent: map[string]Product{}}
}

func (s *service) ListProducts(ctx context.Context) (Listing, error) {
	if s.feed == nil {
		return Listing{Products: StaticProducts(), Source: SourceStatic}, nil
	}
	rows, err := s.feed.ListActive(ctx, FeedLimit)
	if err != nil {
		s.logger.WithError(err).Warn("live catalog unavailable, serving bundled products")
		return Listing{
			Products: StaticProducts(),
			Source:   SourceStatic,
			Notice:   "Failed to load live products: " + errors.Cause(err).Error(),
		}, nil
	}

	products := make([]Product, 0, len(rows))
	fresh := make(map[string]Product, len(rows))
	for _, row := range rows {
		p := row.ToProduct()
		products = append(products, p)
		fresh[p.ID] = p.clone()
	}
	s.mu.Lock()
	s.recent = fresh
	s.mu.Unlock()

	return Listing{Products: products, Source: SourceRemote}, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (Product, error) {
	if s.feed != nil {
		row, err := s.feed.GetBySlug(ctx, id)
		switch {
		case err == nil:
			p := row.ToProduct()
			s.remember(p)
			return p, nil
		case !errors.Is(err, ErrProductNotFound):
			s.logger.WithError(err).WithField("product_id", id).Warn("live product lookup failed")
		}
	}
	if p, ok := s.Lookup(id); ok {
		return p, nil
	}
	return Product{}, ErrProductNotFound
}

func (s *service) remember(p Product) {
	s.mu.Lock()
	s.recent[p.ID] = p.clone()
	s.mu.Unlock()
}

func (s *service) Lookup(id string) (Product, bool) {
	s.mu.RLock()
	p, ok := s.recent[id]
	s.mu.RUnlock()
	if ok {
		return p.clone(), true
	}
	return StaticProduct(id)
}

func (s *service) Featured(ctx context.Context, n int) ([]Product, error) {
	return s.section(ctx, n, func(p Product) bool { return p.Featured })
}

func (s *service) Trending(ctx context.Context, n int) ([]Product, error) {
	return s.section(ctx, n, func(p Product) bool { return p.Trending })
}

// section picks flagged products of the listing and tops the row up with
// flagged bundled products so a live feed without flags still fills it.
func (s *service) section(ctx context.Context, n int, flagged func(Product) bool) ([]Product, error) {
	if n <= 0 {
		n = DefaultSectionSize
	}
	listing, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Product, 0, n)
	seen := map[string]bool{}
	for _, p := range listing.Products {
		if len(out) == n {
			return out, nil
		}
		if flagged(p) {
			out = append(out, p)
			seen[p.ID] = true
		}
	}
	for _, p := range staticProducts {
		if len(out) == n {
			break
		}
		if flagged(p) && !seen[p.ID] {
			out = append(out, p.clone())
		}
	}
	return out, nil
}

func (s *service) Related(ctx context.Context, id string, n int) ([]Product, error) {
	if n <= 0 {
		n = relatedSize
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, n)
	for _, candidate := range staticProducts {
		if len(out) == n {
			break
		}
		if candidate.Sport == p.Sport && candidate.ID != p.ID {
			out = append(out, candidate.clone())
		}
	}
	return out, nil
}

func (s *service) Search(ctx context.Context, f Filter) ([]Product, error) {
	listing, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(listing.Products))
	for _, p := range listing.Products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *service) Facets(ctx context.Context) (Facets, error) {
	listing, err := s.ListProducts(ctx)
	if err != nil {
		return Facets{}, err
	}
	teams := map[string]bool{}
	sports := map[Sport]bool{}
	for _, p := range listing.Products {
		teams[p.Team] = true
		sports[p.Sport] = true
	}

	f := Facets{Teams: make([]string, 0, len(teams)), Sports: make([]Sport, 0, len(sports))}
	for t := range teams {
		f.Teams = append(f.Teams, t)
	}
	for sp := range sports {
		f.Sports = append(f.Sports, sp)
	}
	sort.Strings(f.Teams)
	sort.Slice(f.Sports, func(i, j int) bool { return f.Sports[i] < f.Sports[j] })
	return f, nil
}
