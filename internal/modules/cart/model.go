package cart

import (
	"strings"
	"unicode"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/catalog"
)

// MaxQuantity is the stepper ceiling applied at the HTTP layer. The store
// itself accepts any quantity.
const MaxQuantity = 10

const (
	FontClassic = "classic"
	FontBlock   = "block"

	maxNameLen   = 12
	maxNumberLen = 2
	defaultColor = "#ffffff"
)

// Customization is the name and number printed on a jersey.
type Customization struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	Font   string `json:"font"`
	Color  string `json:"color"`
}

// NormalizeCustomization upper-cases and truncates the name, keeps at most
// two digits of the number and defaults the font and color.
func NormalizeCustomization(c Customization) Customization {
	name := []rune(strings.ToUpper(c.Name))
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	var digits []rune
	for _, r := range c.Number {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			digits = append(digits, r)
		}
	}
	if len(digits) > maxNumberLen {
		digits = digits[:maxNumberLen]
	}

	font := c.Font
	if font != FontClassic {
		font = FontBlock
	}
	color := c.Color
	if color == "" {
		color = defaultColor
	}
	return Customization{Name: string(name), Number: string(digits), Font: font, Color: color}
}

// LineItem is one (product, size) line. The snapshot, when present, lets
// the line render without the catalog.
type LineItem struct {
	ProductID string            `json:"id"`
	Size      string            `json:"size"`
	Qty       int               `json:"qty"`
	Product   *catalog.Snapshot `json:"product,omitempty"`
	Custom    *Customization    `json:"custom,omitempty"`
}

func (l LineItem) matches(productID, size string) bool {
	return l.ProductID == productID && l.Size == size
}

func (l LineItem) clone() LineItem {
	c := l
	if l.Product != nil {
		snap := l.Product.Clone()
		c.Product = &snap
	}
	if l.Custom != nil {
		custom := *l.Custom
		c.Custom = &custom
	}
	return c
}

// DetailedLine is a line with its display product resolved.
type DetailedLine struct {
	ProductID string           `json:"id"`
	Size      string           `json:"size"`
	Qty       int              `json:"qty"`
	Product   catalog.Snapshot `json:"product"`
	Custom    *Customization   `json:"custom,omitempty"`
}

// LineTotal is price times quantity.
func (d DetailedLine) LineTotal() float64 {
	return d.Product.Price * float64(d.Qty)
}

// Summary is the cart view the storefront renders.
type Summary struct {
	Items    []LineItem     `json:"items"`
	Detailed []DetailedLine `json:"detailed"`
	Count    int            `json:"count"`
	Total    float64        `json:"total"`
}
