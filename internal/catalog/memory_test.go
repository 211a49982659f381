package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pscheid92/rankpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "kb1", Name: "Clicky Board", Category: "keyboards", Price: 129.99},
		{ID: "m1", Name: "Quiet Mouse", Category: "mice", Price: 49.50},
	}
}

func TestMemoryCatalog_Lookups(t *testing.T) {
	cat := NewMemoryCatalog(sampleProducts())
	ctx := context.Background()

	exists, err := cat.ProductExists(ctx, "kb1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = cat.ProductExists(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, exists)

	category, err := cat.CategoryOf(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "mice", category)

	_, err = cat.CategoryOf(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
}

func TestMemoryCatalog_ListSortedByID(t *testing.T) {
	cat := NewMemoryCatalog(sampleProducts())

	products, err := cat.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "kb1", products[0].ID)
	assert.Equal(t, "m1", products[1].ID)
}

func TestLoadFromFile_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	payload := `[
		{"id": "kb1", "name": "Clicky Board", "category": "keyboards", "price": 129.99},
		{"id": "m1", "name": "Quiet Mouse", "category": "mice", "price": 49.5}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	cat, err := LoadFromFile(path)
	require.NoError(t, err)

	category, err := cat.CategoryOf(context.Background(), "kb1")
	require.NoError(t, err)
	assert.Equal(t, "keyboards", category)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadFromFile_RejectsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "", "category": "mice"}]`), 0o600))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromFile_RejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}
