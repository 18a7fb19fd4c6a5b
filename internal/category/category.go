package category

import (
	"fmt"
	"slices"
	"strings"

	"posdemo/backend/internal/store"
)

// ReferenceChecker answers whether a category label is still referenced.
type ReferenceChecker interface {
	CategoryInUse(name string) bool
}

// Registry is the ordered set of category labels. Names are compared
// exactly, case included.
type Registry struct {
	names []string
}

func New(names []string) *Registry {
	r := &Registry{}
	r.Replace(names)
	return r
}

func DefaultNames() []string {
	return []string{"Electronics", "Accessories", "Storage"}
}

func NewSeeded() *Registry {
	return New(DefaultNames())
}

// Replace swaps the label set, dropping blanks and duplicates.
func (r *Registry) Replace(names []string) {
	r.names = make([]string, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" || slices.Contains(r.names, name) {
			continue
		}
		r.names = append(r.names, name)
	}
}

func (r *Registry) List() []string {
	return slices.Clone(r.names)
}

func (r *Registry) Has(name string) bool {
	return slices.Contains(r.names, name)
}

func (r *Registry) Add(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %w", store.ErrDuplicateCategory, store.NewValidationError("name", "category name cannot be empty"))
	}
	if r.Has(name) {
		return fmt.Errorf("category %q: %w", name, store.ErrDuplicateCategory)
	}
	r.names = append(r.names, name)
	return nil
}

// Ensure adds name when it is missing and reports whether it did.
// Blank names are ignored.
func (r *Registry) Ensure(name string) bool {
	if strings.TrimSpace(name) == "" || r.Has(name) {
		return false
	}
	r.names = append(r.names, name)
	return true
}

func (r *Registry) Delete(name string, refs ReferenceChecker) error {
	idx := slices.Index(r.names, name)
	if idx < 0 {
		return fmt.Errorf("category %q: %w", name, store.ErrNotFound)
	}
	if refs != nil && refs.CategoryInUse(name) {
		return fmt.Errorf("category %q: %w", name, store.ErrCategoryInUse)
	}
	r.names = slices.Delete(r.names, idx, idx+1)
	return nil
}
