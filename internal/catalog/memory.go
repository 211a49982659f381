package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pscheid92/rankpulse/internal/domain"
)

// MemoryCatalog is an immutable in-memory catalog.
type MemoryCatalog struct {
	products map[string]domain.Product
}

func NewMemoryCatalog(products []domain.Product) *MemoryCatalog {
	m := make(map[string]domain.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &MemoryCatalog{products: m}
}

// LoadFromFile reads a JSON array of products from disk.
func LoadFromFile(path string) (*MemoryCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	for _, p := range products {
		if p.ID == "" || p.Category == "" {
			return nil, fmt.Errorf("catalog file contains product with empty id or category")
		}
	}
	return NewMemoryCatalog(products), nil
}

func (c *MemoryCatalog) ProductExists(_ context.Context, productID string) (bool, error) {
	_, ok := c.products[productID]
	return ok, nil
}

func (c *MemoryCatalog) CategoryOf(_ context.Context, productID string) (string, error) {
	p, ok := c.products[productID]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownProduct, productID)
	}
	return p.Category, nil
}

func (c *MemoryCatalog) List(_ context.Context) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}
