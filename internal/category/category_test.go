package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posdemo/backend/internal/store"
)

type fakeRefs map[string]int

func (f fakeRefs) CategoryInUse(name string) bool {
	return f[name] > 0
}

func TestAddRejectsDuplicatesAndBlanks(t *testing.T) {
	r := NewSeeded()

	require.NoError(t, r.Add("Audio"))
	assert.ErrorIs(t, r.Add("Audio"), store.ErrDuplicateCategory)

	err := r.Add("   ")
	assert.ErrorIs(t, err, store.ErrDuplicateCategory)
	assert.ErrorIs(t, err, store.ErrValidation)

	assert.Equal(t, []string{"Electronics", "Accessories", "Storage", "Audio"}, r.List())
}

func TestAddIsCaseSensitive(t *testing.T) {
	r := NewSeeded()

	require.NoError(t, r.Add("storage"))
	assert.True(t, r.Has("storage"))
	assert.True(t, r.Has("Storage"))
}

func TestEnsure(t *testing.T) {
	r := NewSeeded()

	assert.False(t, r.Ensure("Storage"))
	assert.True(t, r.Ensure("Audio"))
	assert.False(t, r.Ensure(""))
	assert.Len(t, r.List(), 4)
}

func TestDeleteUnreferencedCategory(t *testing.T) {
	r := NewSeeded()

	require.NoError(t, r.Delete("Storage", fakeRefs{}))
	assert.False(t, r.Has("Storage"))
}

func TestDeleteReferencedCategoryLeavesRegistryUnchanged(t *testing.T) {
	r := NewSeeded()
	before := r.List()

	err := r.Delete("Storage", fakeRefs{"Storage": 1})
	assert.ErrorIs(t, err, store.ErrCategoryInUse)
	assert.Equal(t, before, r.List())
}

func TestDeleteUnknownCategory(t *testing.T) {
	r := NewSeeded()

	assert.ErrorIs(t, r.Delete("Audio", fakeRefs{}), store.ErrNotFound)
}

func TestReplaceDropsBlanksAndDuplicates(t *testing.T) {
	r := New([]string{"A", "", "B", "A", " "})

	assert.Equal(t, []string{"A", "B"}, r.List())
}
