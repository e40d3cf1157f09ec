package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// AssetCategory represents the kind of object an asset is placed as
type AssetCategory string

const (
	AssetCategoryRock  AssetCategory = "rock"
	AssetCategoryTree  AssetCategory = "tree"
	AssetCategoryGrass AssetCategory = "grass"
)

// AssetMetadata represents metadata for a single template mesh
type AssetMetadata struct {
	ID         string        `json:"id"`
	Category   AssetCategory `json:"category"`
	Path       string        `json:"path"`
	Tags       []string      `json:"tags"`
	CreatedAt  time.Time     `json:"created_at"`
	ModifiedAt time.Time     `json:"modified_at"`
}

// AssetCatalog represents a collection of asset metadata. Relative asset paths
// are resolved against the directory the catalog was loaded from.
type AssetCatalog struct {
	Assets map[string]*AssetMetadata `json:"assets"`

	baseDir string
}

// NewAssetCatalog creates a new empty asset catalog
func NewAssetCatalog() *AssetCatalog {
	return &AssetCatalog{
		Assets: make(map[string]*AssetMetadata),
	}
}

// AddAsset adds a new asset to the catalog
func (ac *AssetCatalog) AddAsset(asset *AssetMetadata) error {
	if asset.ID == "" {
		return fmt.Errorf("asset ID cannot be empty")
	}
	if asset.Path == "" {
		return fmt.Errorf("asset '%s' has no path", asset.ID)
	}

	if _, exists := ac.Assets[asset.ID]; exists {
		return fmt.Errorf("asset with ID '%s' already exists", asset.ID)
	}

	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now()
	}
	if asset.ModifiedAt.IsZero() {
		asset.ModifiedAt = asset.CreatedAt
	}

	asset.Tags = normalizeTags(asset.Tags)

	ac.Assets[asset.ID] = asset
	return nil
}

// UpdateAsset updates an existing asset in the catalog
func (ac *AssetCatalog) UpdateAsset(asset *AssetMetadata) error {
	if asset.ID == "" {
		return fmt.Errorf("asset ID cannot be empty")
	}

	if _, exists := ac.Assets[asset.ID]; !exists {
		return fmt.Errorf("asset with ID '%s' does not exist", asset.ID)
	}

	asset.ModifiedAt = time.Now()
	asset.Tags = normalizeTags(asset.Tags)

	ac.Assets[asset.ID] = asset
	return nil
}

// RemoveAsset removes an asset from the catalog
func (ac *AssetCatalog) RemoveAsset(id string) error {
	if _, exists := ac.Assets[id]; !exists {
		return fmt.Errorf("asset with ID '%s' does not exist", id)
	}

	delete(ac.Assets, id)
	return nil
}

// Get returns the asset with the given ID
func (ac *AssetCatalog) Get(id string) (*AssetMetadata, bool) {
	asset, ok := ac.Assets[id]
	return asset, ok
}

// ResolvePath returns the file path of an asset, joined with the catalog
// directory when relative
func (ac *AssetCatalog) ResolvePath(id string) (string, error) {
	asset, ok := ac.Assets[id]
	if !ok {
		return "", fmt.Errorf("asset with ID '%s' does not exist", id)
	}
	if filepath.IsAbs(asset.Path) || ac.baseDir == "" {
		return asset.Path, nil
	}
	return filepath.Join(ac.baseDir, asset.Path), nil
}

// FindAssetsByCategory returns every asset of a category, sorted by ID
func (ac *AssetCatalog) FindAssetsByCategory(category AssetCategory) []*AssetMetadata {
	return ac.FindAssetsByTags(category, nil)
}

// FindAssetsByTags finds assets of a category that carry all the given tags,
// sorted by ID
func (ac *AssetCatalog) FindAssetsByTags(category AssetCategory, tags []string) []*AssetMetadata {
	result := []*AssetMetadata{}

	for _, asset := range ac.Assets {
		if asset.Category != category {
			continue
		}

		hasAllTags := true
		for _, tag := range normalizeTags(tags) {
			found := false
			for _, assetTag := range asset.Tags {
				if assetTag == tag {
					found = true
					break
				}
			}
			if !found {
				hasAllTags = false
				break
			}
		}

		if hasAllTags {
			result = append(result, asset)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// SaveToFile saves the asset catalog to a JSON file
func (ac *AssetCatalog) SaveToFile(filePath string) error {
	data, err := json.MarshalIndent(ac, "", "  ")
	if err != nil {
		return fmt.Errorf("error serializing asset catalog: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing asset catalog file: %w", err)
	}

	return nil
}

// LoadAssetCatalogFromFile loads the asset catalog from a JSON file
func LoadAssetCatalogFromFile(filePath string) (*AssetCatalog, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading asset catalog file: %w", err)
	}

	catalog := NewAssetCatalog()
	if err := json.Unmarshal(data, catalog); err != nil {
		return nil, fmt.Errorf("error parsing asset catalog: %w", err)
	}
	if catalog.Assets == nil {
		catalog.Assets = make(map[string]*AssetMetadata)
	}
	catalog.baseDir = filepath.Dir(filePath)

	return catalog, nil
}

// normalizeTags lowercases, trims and deduplicates tags
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return tags
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
