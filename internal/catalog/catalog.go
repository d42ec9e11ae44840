// Package catalog is the product lookup the item editor selects from. The
// built-in catalog is a small fixed set standing in for a real product
// service; the interface exists so one can be substituted.
package catalog

type Product struct {
	Name  string   `json:"name"`
	SKU   string   `json:"sku"`
	Price int      `json:"price"`
	Sizes []string `json:"sizes"`
}

// FirstSize is the size an item resets to when a product is selected.
func (p Product) FirstSize() string {
	if len(p.Sizes) == 0 {
		return NoSize
	}
	return p.Sizes[0]
}

// NoSize is the placeholder for products without size options.
const NoSize = "—"

type Catalog interface {
	FindByName(name string) (Product, bool)
	FindBySKU(sku string) (Product, bool)
	Products() []Product
}

type catalog struct {
	products []Product
	byName   map[string]Product
	bySKU    map[string]Product
}

// New returns the fixed demo catalog.
func New() Catalog {
	return NewWith([]Product{
		{Name: "Кольцо с бриллиантом", SKU: "KB-001", Price: 7950, Sizes: []string{"16", "17", "18"}},
		{Name: "Серьги золотые", SKU: "ER-210", Price: 5600, Sizes: []string{NoSize}},
		{Name: "Подвеска с сапфиром", SKU: "PN-078", Price: 11200, Sizes: []string{NoSize}},
	})
}

// NewWith builds a catalog over the given products, keeping their order for
// listing.
func NewWith(products []Product) Catalog {
	c := &catalog{
		products: products,
		byName:   make(map[string]Product, len(products)),
		bySKU:    make(map[string]Product, len(products)),
	}
	for _, p := range products {
		c.byName[p.Name] = p
		c.bySKU[p.SKU] = p
	}
	return c
}

func (c *catalog) FindByName(name string) (Product, bool) {
	p, ok := c.byName[name]
	return p, ok
}

func (c *catalog) FindBySKU(sku string) (Product, bool) {
	p, ok := c.bySKU[sku]
	return p, ok
}

func (c *catalog) Products() []Product {
	return c.products
}

// SizesForSKU lists the size options for a SKU, falling back to the
// placeholder for unknown products so a size picker is never empty.
func SizesForSKU(c Catalog, sku string) []string {
	if p, ok := c.FindBySKU(sku); ok && len(p.Sizes) > 0 {
		return p.Sizes
	}
	return []string{NoSize}
}
