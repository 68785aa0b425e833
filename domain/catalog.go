package domain

// CatalogProduct is the product shape resolved through the platform catalog.
// This service never mutates catalog data.
type CatalogProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Style    string  `json:"style"`
	Material string  `json:"material"`
	Color    string  `json:"color"`
}
