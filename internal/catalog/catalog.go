// Package catalog loads the categorized block catalog from YAML files, the
// builtin definitions, or a remote generator.
package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

// ErrCatalogUnavailable is returned when no catalog source could be read.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Loader produces the block catalog.
type Loader interface {
	Load(ctx context.Context) (*models.CatalogMap, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (*models.CatalogMap, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) (*models.CatalogMap, error) {
	return f(ctx)
}

// OnceLoader memoizes the first load of an underlying loader.
type OnceLoader struct {
	loader Loader

	once    sync.Once
	catalog *models.CatalogMap
	err     error
}

// Once wraps loader so that it is consulted at most once. Later calls return
// the first result, including a failure.
func Once(loader Loader) *OnceLoader {
	return &OnceLoader{loader: loader}
}

// Load returns the memoized catalog. Callers receive their own copy.
func (o *OnceLoader) Load(ctx context.Context) (*models.CatalogMap, error) {
	o.once.Do(func() {
		if o.loader == nil {
			o.err = ErrCatalogUnavailable
			return
		}
		o.catalog, o.err = o.loader.Load(ctx)
	})
	if o.err != nil {
		return nil, o.err
	}
	return o.catalog.Clone(), nil
}
