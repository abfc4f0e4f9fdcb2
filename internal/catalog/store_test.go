package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogFile(t *testing.T, content string) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return NewFileStore(path)
}

func TestLoadBareList(t *testing.T) {
	store := writeCatalogFile(t, `[{"nome": "Fone", "preco": "R$ 99,90"}]`)

	cat, err := store.Load()
	assert.NoError(t, err)
	assert.Empty(t, cat.Priority)
	require.Len(t, cat.General, 1)
	assert.Equal(t, "Fone", cat.General[0].Name)
	assert.False(t, cat.Dirty)
}

func TestLoadCanonicalObject(t *testing.T) {
	store := writeCatalogFile(t, `{
		"prioridade": [{"nome": "Fone"}],
		"geral": [{"nome": "Mouse"}, {"nome": "Teclado"}]
	}`)

	cat, err := store.Load()
	assert.NoError(t, err)
	require.Len(t, cat.Priority, 1)
	require.Len(t, cat.General, 2)
	assert.False(t, cat.Dirty)
}

func TestLoadMergesLegacyKey(t *testing.T) {
	store := writeCatalogFile(t, `{
		"prioridade": [{"nome": "Fone"}],
		"prioritarios": [{"nome": "Caixa de Som"}],
		"geral": []
	}`)

	cat, err := store.Load()
	assert.NoError(t, err)
	require.Len(t, cat.Priority, 2)
	assert.Equal(t, "Fone", cat.Priority[0].Name)
	assert.Equal(t, "Caixa de Som", cat.Priority[1].Name)
	assert.True(t, cat.Dirty)
}

func TestLoadMalformedFileYieldsEmptyCatalog(t *testing.T) {
	store := writeCatalogFile(t, `{"prioridade": [`)

	cat, err := store.Load()
	assert.Error(t, err)
	assert.True(t, cat.IsEmpty())
}

func TestLoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))

	cat, err := store.Load()
	assert.NoError(t, err)
	assert.True(t, cat.IsEmpty())
}

func TestSaveWritesCanonicalShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	store := NewFileStore(path)

	err := store.Save(Catalog{General: []Offer{{Name: "Mouse"}}})
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "prioridade")
	assert.Contains(t, raw, "geral")
	assert.NotContains(t, raw, "prioritarios")
	assert.Equal(t, "[]", string(raw["prioridade"]))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	store := NewFileStore(path)

	original := Catalog{
		Priority: []Offer{{Name: "Fone", Price: "R$ 99,90", Link: "https://loja.example/fone"}},
		General:  []Offer{{Name: "Mouse", DiscountPrice: "R$ 49,90", Image: "https://i.imgur.com/abc.jpg"}},
	}
	require.NoError(t, store.Save(original))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, original.Priority, loaded.Priority)
	assert.Equal(t, original.General, loaded.General)
	assert.False(t, loaded.Dirty)

	// Saving what was loaded must not change the file contents
	require.NoError(t, store.Save(loaded))
	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, loaded.Priority, again.Priority)
	assert.Equal(t, loaded.General, again.General)
}

func TestOfferImageRefAliases(t *testing.T) {
	assert.Equal(t, "a.jpg", Offer{Image: "a.jpg", LegacyImage: "b.jpg"}.ImageRef())
	assert.Equal(t, "b.jpg", Offer{LegacyImage: " b.jpg "}.ImageRef())
	assert.Equal(t, "", Offer{}.ImageRef())
}

func TestTruthyVariants(t *testing.T) {
	cases := map[string]bool{
		`true`:            true,
		`false`:           false,
		`"sim"`:           true,
		`"YES"`:           true,
		`"true"`:          true,
		`"Frete grátis"`:  true,
		`"não"`:           false,
		`"whatever"`:      false,
		`123`:             false,
		`{"weird": true}`: false,
	}

	for raw, want := range cases {
		var tr Truthy
		err := json.Unmarshal([]byte(raw), &tr)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, tr.Bool(), raw)
	}
}
