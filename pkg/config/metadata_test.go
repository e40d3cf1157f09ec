package config

import (
	"path/filepath"
	"testing"
)

func TestAssetCatalog(t *testing.T) {
	ac := NewAssetCatalog()
	assets := []*AssetMetadata{
		{ID: "granite", Category: AssetCategoryRock, Path: "rocks/granite.obj", Tags: []string{"Grey", "large"}},
		{ID: "pebble", Category: AssetCategoryRock, Path: "rocks/pebble.obj", Tags: []string{"grey"}},
		{ID: "pine", Category: AssetCategoryTree, Path: "/abs/pine.obj"},
	}
	for _, a := range assets {
		if err := ac.AddAsset(a); err != nil {
			t.Fatalf("AddAsset(%s): %v", a.ID, err)
		}
	}
	if err := ac.AddAsset(&AssetMetadata{ID: "pine", Path: "x.obj"}); err == nil {
		t.Error("expected duplicate ID error")
	}
	if err := ac.AddAsset(&AssetMetadata{ID: "nopath"}); err == nil {
		t.Error("expected missing path error")
	}

	rocks := ac.FindAssetsByCategory(AssetCategoryRock)
	if len(rocks) != 2 || rocks[0].ID != "granite" || rocks[1].ID != "pebble" {
		t.Fatalf("FindAssetsByCategory = %v", rocks)
	}
	large := ac.FindAssetsByTags(AssetCategoryRock, []string{"GREY", "large"})
	if len(large) != 1 || large[0].ID != "granite" {
		t.Fatalf("FindAssetsByTags = %v", large)
	}

	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := ac.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}
	loaded, err := LoadAssetCatalogFromFile(path)
	if err != nil {
		t.Fatalf("LoadAssetCatalogFromFile: %v", err)
	}
	if len(loaded.Assets) != 3 {
		t.Fatalf("loaded %d assets", len(loaded.Assets))
	}

	got, err := loaded.ResolvePath("granite")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if want := filepath.Join(filepath.Dir(path), "rocks", "granite.obj"); got != want {
		t.Errorf("ResolvePath = %q, want %q", got, want)
	}
	if got, _ := loaded.ResolvePath("pine"); got != "/abs/pine.obj" {
		t.Errorf("absolute path rewritten to %q", got)
	}
	if _, err := loaded.ResolvePath("oak"); err == nil {
		t.Error("expected error for unknown asset")
	}

	if err := loaded.RemoveAsset("pebble"); err != nil {
		t.Fatalf("RemoveAsset: %v", err)
	}
	if _, ok := loaded.Get("pebble"); ok {
		t.Error("asset still present after removal")
	}
}
