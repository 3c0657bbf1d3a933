package catalog

import (
	"fmt"
	"sort"
)

// Product is a catalog entry. The catalog is fixed configuration: loaded
// once at process start and never mutated while serving.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_in_cents"`
	Category    string `json:"category"`
	Image       string `json:"image,omitempty"`
}

type Catalog struct {
	byID  map[string]Product
	order []string
}

// New builds a catalog, rejecting duplicate identifiers and negative prices.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Product, len(products))}
	for _, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog: product %q has empty id", p.Name)
		}
		if p.PriceCents < 0 {
			return nil, fmt.Errorf("catalog: product %q has negative price", p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %q", p.ID)
		}
		c.byID[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

// Default returns the built-in luxury catalog.
func Default() *Catalog {
	c, err := New(defaultProducts)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Lookup(id string) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// All returns products in declaration order.
func (c *Catalog) All() []Product {
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Categories returns the distinct category labels, sorted.
func (c *Catalog) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range c.byID {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out
}

var defaultProducts = []Product{
	{
		ID:          "vip-concierge-annual",
		Name:        "VIP Concierge Annual",
		Description: "Full-year access to dedicated concierge services for luxury experiences",
		PriceCents:  999900,
		Category:    "Services",
		Image:       "/images/products/vip-concierge-annual.jpg",
	},
	{
		ID:          "private-jet-charter",
		Name:        "Private Jet Charter",
		Description: "One-time charter for up to 8 passengers on a luxury private jet",
		PriceCents:  4999900,
		Category:    "Travel",
		Image:       "/images/products/private-jet-charter.jpg",
	},
	{
		ID:          "exclusive-wine-collection",
		Name:        "Exclusive Wine Collection",
		Description: "Curated selection of rare vintage wines from exclusive vineyards",
		PriceCents:  24999,
		Category:    "Luxury Goods",
		Image:       "/images/products/exclusive-wine-collection.jpg",
	},
	{
		ID:          "spa-wellness-retreat",
		Name:        "Spa & Wellness Retreat",
		Description: "5-day luxury spa and wellness retreat at an exclusive resort",
		PriceCents:  1999900,
		Category:    "Wellness",
		Image:       "/images/products/spa-wellness-retreat.jpg",
	},
	{
		ID:          "fine-art-collection",
		Name:        "Fine Art Collection",
		Description: "Limited edition contemporary art pieces from renowned artists",
		PriceCents:  2499900,
		Category:    "Art",
		Image:       "/images/products/fine-art-collection.jpg",
	},
	{
		ID:          "luxury-timepiece",
		Name:        "Luxury Timepiece",
		Description: "Exclusive handcrafted luxury watch with Swiss movement",
		PriceCents:  4999900,
		Category:    "Jewelry",
		Image:       "/images/products/luxury-timepiece.jpg",
	},
}
