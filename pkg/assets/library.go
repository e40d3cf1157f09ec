package assets

import (
	"fmt"

	"terragen/internal/logger"
	"terragen/pkg/config"
)

// Library loads templates on demand and caches them by reference
type Library struct {
	catalog *config.AssetCatalog
	cache   map[string]*Template
	log     *logger.Logger
}

// NewLibrary creates a library. A nil catalog makes every reference a file path.
func NewLibrary(catalog *config.AssetCatalog, log *logger.Logger) *Library {
	if log == nil {
		log = logger.Discard()
	}
	return &Library{
		catalog: catalog,
		cache:   make(map[string]*Template),
		log:     log,
	}
}

// NewLibraryFromConfig loads the catalog named in cfg, if any
func NewLibraryFromConfig(cfg config.AssetsConfig, log *logger.Logger) (*Library, error) {
	if cfg.CatalogFile == "" {
		return NewLibrary(nil, log), nil
	}
	catalog, err := config.LoadAssetCatalogFromFile(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	return NewLibrary(catalog, log), nil
}

// Load returns the template for ref, a catalog ID or a file path. Failures
// wrap ErrAssetUnavailable.
func (l *Library) Load(ref string) (*Template, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty asset reference", ErrAssetUnavailable)
	}
	if t, ok := l.cache[ref]; ok {
		return t, nil
	}

	path, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}

	mesh, err := LoadOBJ(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAssetUnavailable, ref, err)
	}
	if mesh.Name == "" {
		mesh.Name = ref
	}

	t := &Template{id: ref, path: path, mesh: mesh}
	l.cache[ref] = t
	l.log.Debugf("Loaded template %s from %s (%d vertices, %d faces)", ref, path, t.VertexCount(), t.FaceCount())
	return t, nil
}

func (l *Library) resolve(ref string) (string, error) {
	if l.catalog == nil {
		return ref, nil
	}
	if _, ok := l.catalog.Get(ref); !ok {
		return "", fmt.Errorf("%w: %s is not in the asset catalog", ErrAssetUnavailable, ref)
	}
	path, err := l.catalog.ResolvePath(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}
	return path, nil
}
