package catalog

import "strings"

// Sport classifies a product for browsing and default imagery.
type Sport string

const (
	SportFootball   Sport = "Football"
	SportBasketball Sport = "Basketball"
	SportCricket    Sport = "Cricket"
	SportBaseball   Sport = "Baseball"
	SportHockey     Sport = "Hockey"
)

// Product is a jersey as the storefront displays it, whatever its source.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Team        string   `json:"team"`
	Sport       Sport    `json:"sport"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	Images      []string `json:"images"`
	Colors      []string `json:"colors"`
	Sizes       []string `json:"sizes"`
	Description string   `json:"description"`
	Featured    bool     `json:"featured,omitempty"`
	Trending    bool     `json:"trending,omitempty"`
}

// Snapshot is the self-contained display copy stored with cart lines and
// wishlist entries so they keep rendering after the catalog changes.
type Snapshot struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Team        string   `json:"team"`
	Sport       Sport    `json:"sport"`
	Sizes       []string `json:"sizes,omitempty"`
	Description string   `json:"description,omitempty"`
}

func (p Product) Snapshot() Snapshot {
	return Snapshot{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Images:      append([]string(nil), p.Images...),
		Team:        p.Team,
		Sport:       p.Sport,
		Sizes:       append([]string(nil), p.Sizes...),
		Description: p.Description,
	}
}

// Clone returns a copy that shares no slices with s.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Images = append([]string(nil), s.Images...)
	c.Sizes = append([]string(nil), s.Sizes...)
	return c
}

// WithCover fills empty images with the sport cover pair.
func (s Snapshot) WithCover() Snapshot {
	c := s.Clone()
	if len(c.Images) == 0 {
		c.Images = CoverPair(c.Sport)
	}
	return c
}

// HasSize reports whether size is offered. Comparison ignores case.
func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if strings.EqualFold(s, size) {
			return true
		}
	}
	return false
}

// Listing is the product list shown by the shop. Notice carries a
// non-fatal message when the live feed could not be used.
type Listing struct {
	Products []Product `json:"products"`
	Source   string    `json:"source"`
	Notice   string    `json:"notice,omitempty"`
}

const (
	SourceStatic = "static"
	SourceRemote = "remote"
)

// Filter narrows a listing the way the shop page does.
type Filter struct {
	Query    string  `json:"q,omitempty"`
	Sport    Sport   `json:"sport,omitempty"`
	Team     string  `json:"team,omitempty"`
	MaxPrice float64 `json:"max_price,omitempty"`
}

func (f Filter) Match(p Product) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hit := false
		for _, field := range []string{p.Name, p.Team, string(p.Sport)} {
			if strings.Contains(strings.ToLower(field), q) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if f.Sport != "" && p.Sport != f.Sport {
		return false
	}
	if f.Team != "" && p.Team != f.Team {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	return true
}

// Facets lists the distinct teams and sports of a listing.
type Facets struct {
	Teams  []string `json:"teams"`
	Sports []Sport  `json:"sports"`
}
