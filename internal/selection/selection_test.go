package selection

import (
	"os"
	"path/filepath"
	"testing"

	"offerbot/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockStore records catalog saves for assertions
type MockStore struct {
	saves []catalog.Catalog
	err   error
}

// Ensure MockStore implements Store
var _ Store = (*MockStore)(nil)

func (m *MockStore) Save(cat catalog.Catalog) error {
	m.saves = append(m.saves, cat)
	return m.err
}

func TestFingerprintStable(t *testing.T) {
	a := catalog.Offer{Name: "Fone", Price: "R$ 99,90", Link: "https://loja.example/fone"}
	b := catalog.Offer{Name: "Fone", Price: "R$ 99,90", Link: "https://loja.example/fone"}
	c := catalog.Offer{Name: "Mouse", Price: "R$ 99,90", Link: "https://loja.example/fone"}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
	assert.Len(t, Fingerprint(a), 32)
}

func TestFingerprintUsesImageAlias(t *testing.T) {
	a := catalog.Offer{Name: "Fone", Image: "x.jpg"}
	b := catalog.Offer{Name: "Fone", LegacyImage: "x.jpg"}
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestSelectConsumesPriority(t *testing.T) {
	store := &MockStore{}
	engine := NewEngine(store, NewMemoryHistory(5))

	cat := catalog.Catalog{
		Priority: []catalog.Offer{{Name: "Fone"}},
		General:  []catalog.Offer{{Name: "Mouse"}},
	}

	pick, err := engine.SelectAndConsume(&cat)
	require.NoError(t, err)
	require.NotNil(t, pick)
	assert.Equal(t, SourcePriority, pick.Source)
	assert.Equal(t, "Fone", pick.Offer.Name)
	assert.Empty(t, cat.Priority)

	// Consumption is persisted before the draw returns
	require.Len(t, store.saves, 1)
	assert.Empty(t, store.saves[0].Priority)
}

func TestSelectPriorityExhaustionRepeats(t *testing.T) {
	store := &MockStore{}
	history := NewMemoryHistory(5)
	engine := NewEngine(store, history)

	offer := catalog.Offer{Name: "Fone"}
	require.NoError(t, history.Add(Fingerprint(offer)))

	cat := catalog.Catalog{Priority: []catalog.Offer{offer}}
	pick, err := engine.SelectAndConsume(&cat)
	require.NoError(t, err)
	require.NotNil(t, pick)
	assert.Equal(t, "Fone", pick.Offer.Name)
	assert.Empty(t, cat.Priority)
}

func TestSelectGeneralAvoidsRecent(t *testing.T) {
	store := &MockStore{}
	history := NewMemoryHistory(1)
	engine := NewEngine(store, history)

	recent := catalog.Offer{Name: "Mouse"}
	other := catalog.Offer{Name: "Teclado"}
	require.NoError(t, history.Add(Fingerprint(recent)))

	cat := catalog.Catalog{General: []catalog.Offer{recent, other}}

	// With an alternative available the recent entry is never drawn,
	// regardless of where the random scan starts
	for i := 0; i < 50; i++ {
		history.entries = []string{Fingerprint(recent)}
		pick, err := engine.SelectAndConsume(&cat)
		require.NoError(t, err)
		require.NotNil(t, pick)
		assert.Equal(t, "Teclado", pick.Offer.Name)
		assert.Equal(t, SourceGeneral, pick.Source)
	}

	// The general pool is never mutated and never saved
	assert.Len(t, cat.General, 2)
	assert.Empty(t, store.saves)
}

func TestSelectEmptyCatalog(t *testing.T) {
	engine := NewEngine(&MockStore{}, NewMemoryHistory(5))

	pick, err := engine.SelectAndConsume(&catalog.Catalog{})
	assert.NoError(t, err)
	assert.Nil(t, pick)
}

func TestSelectSaveFailureStillReturnsPick(t *testing.T) {
	store := &MockStore{err: os.ErrPermission}
	engine := NewEngine(store, NewMemoryHistory(5))

	cat := catalog.Catalog{Priority: []catalog.Offer{{Name: "Fone"}}}
	pick, err := engine.SelectAndConsume(&cat)
	assert.Error(t, err)
	require.NotNil(t, pick)
	assert.Equal(t, "Fone", pick.Offer.Name)
}

func TestMemoryHistoryBound(t *testing.T) {
	h := NewMemoryHistory(2)
	require.NoError(t, h.Add("a"))
	require.NoError(t, h.Add("b"))
	require.NoError(t, h.Add("c"))

	assert.False(t, h.Contains("a"))
	assert.True(t, h.Contains("b"))
	assert.True(t, h.Contains("c"))
}

func TestFileHistoryPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	h := NewFileHistory(path, 3)
	require.NoError(t, h.Add("a"))
	require.NoError(t, h.Add("b"))

	// A fresh instance sees the persisted window
	reloaded := NewFileHistory(path, 3)
	assert.True(t, reloaded.Contains("a"))
	assert.True(t, reloaded.Contains("b"))
	assert.False(t, reloaded.Contains("c"))
}

func TestFileHistoryCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	h := NewFileHistory(path, 3)
	assert.False(t, h.Contains("a"))
	assert.NoError(t, h.Add("a"))
	assert.True(t, h.Contains("a"))
}

func TestFileHistoryBoundOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(`["a","b","c","d"]`), 0644))

	h := NewFileHistory(path, 2)
	assert.False(t, h.Contains("a"))
	assert.False(t, h.Contains("b"))
	assert.True(t, h.Contains("c"))
	assert.True(t, h.Contains("d"))
}
