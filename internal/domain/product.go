package domain

import "context"

// Product is owned by the external catalog; the engine only reads identity
// and category and derives rank/vote fields from them.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// Catalog is the product-catalog collaborator consumed by the engine to
// validate votes and bucket rankings by category.
type Catalog interface {
	// ProductExists reports whether the catalog knows the product.
	ProductExists(ctx context.Context, productID string) (bool, error)

	// CategoryOf returns the product's category, or ErrUnknownProduct.
	CategoryOf(ctx context.Context, productID string) (string, error)

	// List returns all catalog products. Used to seed the ranking engine
	// at startup so zero-vote products still appear in rankings.
	List(ctx context.Context) ([]Product, error)
}
