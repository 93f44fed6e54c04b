package catalog

import (
	"fmt"
	"math"
)

var baseProducts = []Product{
	{
		ID:          "FB-NY-01",
		Name:        "NY Guardians Home Jersey",
		Team:        "New York Guardians",
		Sport:       SportFootball,
		Price:       1999,
		Rating:      4.7,
		Colors:      []string{"#0ea5e9", "#111827"},
		Sizes:       []string{"S", "M", "L", "XL", "XXL"},
		Description: "Premium performance football jersey with breathable mesh panels and moisture-wicking fabric. Official team branding and athletic cut.",
		Featured:    true,
		Trending:    true,
	},
	{
		ID:          "BB-LA-23",
		Name:        "LA Hoops City Edition",
		Team:        "Los Angeles Hoops",
		Sport:       SportBasketball,
		Price:       2499,
		Rating:      4.8,
		Colors:      []string{"#6d28d9", "#f59e0b"},
		Sizes:       []string{"XS", "S", "M", "L", "XL"},
		Description: "City Edition basketball jersey with lightweight knit and heat-applied graphics. Designed for comfort on and off the court.",
		Featured:    true,
		Trending:    true,
	},
	{
		ID:          "CR-IND-07",
		Name:        "India ODI Pro Jersey",
		Team:        "India",
		Sport:       SportCricket,
		Price:       1799,
		Rating:      4.6,
		Colors:      []string{"#1d4ed8", "#f97316"},
		Sizes:       []string{"S", "M", "L", "XL"},
		Description: "Official ODI cricket jersey with ventilated side panels and signature tricolor details. Perfect for die-hard supporters.",
		Featured:    true,
	},
	{
		ID:          "BB-CHI-91",
		Name:        "Chicago Legacy Classic",
		Team:        "Chicago Legacy",
		Sport:       SportBasketball,
		Price:       2299,
		Rating:      4.9,
		Colors:      []string{"#ef4444", "#111827"},
		Sizes:       []string{"S", "M", "L", "XL", "XXL"},
		Description: "Throwback basketball classic with stitched lettering and premium fabric. An icon reborn for today's fans.",
		Trending:    true,
	},
	{
		ID:          "FB-DAL-04",
		Name:        "Dallas Star Away",
		Team:        "Dallas Star",
		Sport:       SportFootball,
		Price:       1899,
		Rating:      4.5,
		Colors:      []string{"#60a5fa", "#1f2937"},
		Sizes:       []string{"M", "L", "XL"},
		Description: "Athletic fit football jersey built for speed. Smooth seams reduce friction while mesh zones keep you cool.",
	},
	{
		ID:          "CR-AUS-11",
		Name:        "Australia T20 Kit",
		Team:        "Australia",
		Sport:       SportCricket,
		Price:       1499,
		Rating:      4.4,
		Colors:      []string{"#22c55e", "#facc15"},
		Sizes:       []string{"S", "M", "L", "XL"},
		Description: "Lightweight T20 jersey with bold graphics and durable print. Support the Aussies in style.",
	},
	{
		ID:          "BS-NYY-27",
		Name:        "NY Stripes Home",
		Team:        "New York Stripes",
		Sport:       SportBaseball,
		Price:       2099,
		Rating:      4.3,
		Colors:      []string{"#1e293b", "#f8fafc"},
		Sizes:       []string{"S", "M", "L", "XL"},
		Description: "Classic baseball pinstripes with button front closure and authentic on-field details.",
	},
	{
		ID:          "HK-BOS-33",
		Name:        "Boston Ice Pro",
		Team:        "Boston Ice",
		Sport:       SportHockey,
		Price:       2799,
		Rating:      4.6,
		Colors:      []string{"#0ea5e9", "#111827"},
		Sizes:       []string{"M", "L", "XL", "XXL"},
		Description: "Performance hockey sweater engineered for warmth and breathability with reinforced elbows.",
	},
}

// imageOverrides replaces the generated placeholders with curated photos.
var imageOverrides = map[string][]string{
	"FB-NY-01": {
		"https://images.unsplash.com/photo-1616124619460-ff4ed8f4683c?auto=format&fit=crop&w=1400&q=70",
		"https://images.pexels.com/photos/6077784/pexels-photo-6077784.jpeg?auto=compress&cs=tinysrgb&w=1400",
	},
	"BB-LA-23": {
		"https://images.pexels.com/photos/7005768/pexels-photo-7005768.jpeg?auto=compress&cs=tinysrgb&w=1400",
		"https://images.pexels.com/photos/7005243/pexels-photo-7005243.jpeg?auto=compress&cs=tinysrgb&w=1400",
	},
	"CR-IND-07": {
		"https://images.pexels.com/photos/34211752/pexels-photo-34211752.jpeg?auto=compress&cs=tinysrgb&w=1400",
		"https://images.pexels.com/photos/30497263/pexels-photo-30497263.jpeg?auto=compress&cs=tinysrgb&w=1400",
	},
	"BB-CHI-91": {
		"https://images.unsplash.com/photo-1655089131279-8029e8a21ac6?auto=format&fit=crop&w=1400&q=70",
		"https://images.unsplash.com/photo-1579954115545-a95591f28b9a?auto=format&fit=crop&w=1400&q=70",
	},
	"FB-DAL-04": {
		"https://images.unsplash.com/photo-1577212017184-80cc0da11082?auto=format&fit=crop&w=1400&q=70",
		"https://images.unsplash.com/photo-1530915522896-4d82f3f9bbd9?auto=format&fit=crop&w=1400&q=70",
	},
	"CR-AUS-11": {
		"https://images.pexels.com/photos/32801557/pexels-photo-32801557.jpeg?auto=compress&cs=tinysrgb&w=1400",
		"https://images.pexels.com/photos/34211752/pexels-photo-34211752.jpeg?auto=compress&cs=tinysrgb&w=1400",
	},
	"BS-NYY-27": {
		"https://images.pexels.com/photos/5184688/pexels-photo-5184688.jpeg?auto=compress&cs=tinysrgb&w=1400",
		"https://images.pexels.com/photos/5184696/pexels-photo-5184696.jpeg?auto=compress&cs=tinysrgb&w=1400",
	},
	"HK-BOS-33": {
		"https://images.unsplash.com/photo-1547650276-c112256c9cc6?auto=format&fit=crop&w=1400&q=70",
		"https://images.pexels.com/photos/8974847/pexels-photo-8974847.jpeg?auto=compress&cs=tinysrgb&w=1400",
	},
}

const generatedCount = 8

func generatedProducts() []Product {
	teams := []string{"New York Guardians", "Los Angeles Hoops", "India", "Chicago Legacy"}
	sports := []Sport{SportFootball, SportBasketball, SportCricket, SportBasketball}

	out := make([]Product, 0, generatedCount)
	for i := 0; i < generatedCount; i++ {
		out = append(out, Product{
			ID:          fmt.Sprintf("GEN-%d", i+1),
			Name:        fmt.Sprintf("Elite Performance Jersey %d", i+1),
			Team:        teams[i%4],
			Sport:       sports[i%4],
			Price:       float64(1099 + (i%5)*500),
			Rating:      math.Round((4.1+float64((i*7)%9)/10)*10) / 10,
			Colors:      []string{"#06b6d4", "#22c55e"},
			Sizes:       []string{"S", "M", "L", "XL"},
			Description: "High-performance jersey crafted for fans and athletes. Breathable, durable, iconic.",
		})
	}
	return out
}

var staticProducts, staticByID = buildStatic()

func buildStatic() ([]Product, map[string]Product) {
	all := append(append([]Product(nil), baseProducts...), generatedProducts()...)
	byID := make(map[string]Product, len(all))
	for i := range all {
		if imgs, ok := imageOverrides[all[i].ID]; ok {
			all[i].Images = append([]string(nil), imgs...)
		} else {
			all[i].Images = []string{imageFor(all[i].Name, 1), imageFor(all[i].Name, 2)}
		}
		byID[all[i].ID] = all[i]
	}
	return all, byID
}

// StaticProducts returns a copy of the bundled catalog.
func StaticProducts() []Product {
	return cloneProducts(staticProducts)
}

// StaticProduct looks up a bundled product by id.
func StaticProduct(id string) (Product, bool) {
	p, ok := staticByID[id]
	if !ok {
		return Product{}, false
	}
	return p.clone(), true
}

func (p Product) clone() Product {
	c := p
	c.Images = append([]string(nil), p.Images...)
	c.Colors = append([]string(nil), p.Colors...)
	c.Sizes = append([]string(nil), p.Sizes...)
	return c
}

func cloneProducts(in []Product) []Product {
	out := make([]Product, len(in))
	for i, p := range in {
		out[i] = p.clone()
	}
	return out
}
