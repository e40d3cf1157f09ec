package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"terragen/pkg/config"
)

const quadOBJ = `# unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadOBJ(t *testing.T) {
	mesh, err := ReadOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if mesh.Name != "quad" {
		t.Errorf("name = %q", mesh.Name)
	}
	if len(mesh.Vertices) != 4 || len(mesh.Faces) != 2 {
		t.Fatalf("got %d vertices, %d faces", len(mesh.Vertices), len(mesh.Faces))
	}
	if mesh.Faces[0] != [3]int{0, 1, 2} || mesh.Faces[1] != [3]int{2, 3, 0} {
		t.Errorf("faces = %v", mesh.Faces)
	}

	min, max := mesh.Bounds()
	if min != (mgl64.Vec3{0, 0, 0}) || max != (mgl64.Vec3{1, 1, 0}) {
		t.Errorf("bounds = %v %v", min, max)
	}
}

func TestReadOBJNegativeIndices(t *testing.T) {
	mesh, err := ReadOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if mesh.Faces[0] != [3]int{0, 1, 2} {
		t.Errorf("faces = %v", mesh.Faces)
	}
}

func TestReadOBJDropsUnreferencedVertices(t *testing.T) {
	src := "o tri\nv 9 9 9\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 2 3 4\n"
	mesh, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if len(mesh.Vertices) != 3 || mesh.Vertices[0] != (mgl64.Vec3{0, 0, 0}) {
		t.Errorf("vertices = %v", mesh.Vertices)
	}
	if mesh.Faces[0] != [3]int{0, 1, 2} {
		t.Errorf("faces = %v", mesh.Faces)
	}
}

func TestReadOBJErrors(t *testing.T) {
	bad := []string{
		"",
		"v 0 0\n",
		"v 0 0 x\n",
		"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n",
		"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"v 0 0 0\nf 1 1\n",
		"v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nv 0 2 0\nf 1 2 3 4 5\n",
		"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\nbogus 1\n",
	}
	for _, src := range bad {
		if _, err := ReadOBJ(strings.NewReader(src)); err == nil {
			t.Errorf("expected error for %q", src)
		}
	}
}

func TestInstantiateDoesNotMutateTemplate(t *testing.T) {
	mesh, err := ReadOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	tmpl := NewTemplate("quad", "", mesh)

	m := mgl64.Translate3D(10, 0, 5).Mul4(mgl64.Scale3D(2, 2, 2))
	inst := tmpl.Instantiate(m)

	if got := inst.Vertices[2]; !got.ApproxEqual(mgl64.Vec3{12, 2, 5}) {
		t.Errorf("transformed vertex = %v", got)
	}
	if got := tmpl.Mesh().Vertices[2]; got != (mgl64.Vec3{1, 1, 0}) {
		t.Errorf("template vertex changed to %v", got)
	}

	inst.Vertices[0] = mgl64.Vec3{99, 99, 99}
	inst.Faces[0] = [3]int{3, 3, 3}
	if tmpl.Mesh().Vertices[0] != (mgl64.Vec3{}) || tmpl.Mesh().Faces[0] != [3]int{0, 1, 2} {
		t.Error("instance aliases template storage")
	}

	mesh.Vertices[1] = mgl64.Vec3{-1, -1, -1}
	if tmpl.Mesh().Vertices[1] != (mgl64.Vec3{1, 0, 0}) {
		t.Error("template aliases the mesh it was built from")
	}
}

func TestLibraryLoadsFromPathAndCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	writeFile(t, path, quadOBJ)

	lib := NewLibrary(nil, nil)
	a, err := lib.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, err := lib.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a != b {
		t.Error("second load was not served from the cache")
	}
	if a.FaceCount() != 2 || a.Path() != path || a.ID() != path {
		t.Errorf("unexpected template %+v", a)
	}
}

func TestLibraryWithCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models", "rock.obj"), quadOBJ)

	catalog := config.NewAssetCatalog()
	if err := catalog.AddAsset(&config.AssetMetadata{ID: "rock", Category: config.AssetCategoryRock, Path: "models/rock.obj"}); err != nil {
		t.Fatal(err)
	}
	if err := catalog.AddAsset(&config.AssetMetadata{ID: "tree", Category: config.AssetCategoryTree, Path: "models/missing.obj"}); err != nil {
		t.Fatal(err)
	}
	catalogPath := filepath.Join(dir, "catalog.json")
	if err := catalog.SaveToFile(catalogPath); err != nil {
		t.Fatal(err)
	}

	lib, err := NewLibraryFromConfig(config.AssetsConfig{CatalogFile: catalogPath}, nil)
	if err != nil {
		t.Fatalf("NewLibraryFromConfig: %v", err)
	}

	if _, err := lib.Load("rock"); err != nil {
		t.Fatalf("Load(rock): %v", err)
	}
	for _, ref := range []string{"tree", "bush", ""} {
		if _, err := lib.Load(ref); !errors.Is(err, ErrAssetUnavailable) {
			t.Errorf("Load(%q) error = %v, want ErrAssetUnavailable", ref, err)
		}
	}
}
