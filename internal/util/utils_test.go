package util

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRandomRangeBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := RandomRange(rng, -2, 3)
		if v < -2 || v >= 3 {
			t.Fatalf("RandomRange out of bounds: %v", v)
		}
	}
	if v := RandomRange(rng, 4, 4); v != 4 {
		t.Fatalf("degenerate range returned %v", v)
	}
}

func TestClampAndMap(t *testing.T) {
	if Clamp(5, 0, 1) != 1 || Clamp(-5, 0, 1) != 0 || Clamp(0.5, 0, 1) != 0.5 {
		t.Error("Clamp returned unexpected values")
	}
	if ClampInt(1, 2, 10) != 2 || ClampInt(20, 2, 10) != 10 {
		t.Error("ClampInt returned unexpected values")
	}
	if got := Distance2D(1, 1, 4, 5); got != 5 {
		t.Errorf("Distance2D = %v, want 5", got)
	}
	if got := Map(5, 0, 10, 0, 100); got != 50 {
		t.Errorf("Map = %v, want 50", got)
	}
	if got := Map(5, 1, 1, 7, 9); got != 7 {
		t.Errorf("Map with empty input range = %v, want 7", got)
	}
}

func TestMinMax(t *testing.T) {
	min, max := MinMax([]float64{3, -1, 4, 1, 5})
	if min != -1 || max != 5 {
		t.Fatalf("MinMax = %v, %v", min, max)
	}
	if a, b := MinMax(nil); a != 0 || b != 0 {
		t.Fatalf("MinMax(nil) = %v, %v", a, b)
	}
}

func TestFileHelpers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "presets")
	if err := CreateDirIfNotExist(dir); err != nil {
		t.Fatalf("CreateDirIfNotExist: %v", err)
	}
	if !DirExists(dir) {
		t.Fatal("directory was not created")
	}
	for _, name := range []string{"a.yml", "b.YML", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := ListFilesWithExt(dir, "yml")
	if err != nil {
		t.Fatalf("ListFilesWithExt: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("found %d yml files, want 2: %v", len(files), files)
	}
	if !FileExists(files[0]) {
		t.Errorf("FileExists(%s) = false", files[0])
	}
	if got := GetFileNameWithoutExt("/x/y/Default.yml"); got != "Default" {
		t.Errorf("GetFileNameWithoutExt = %q", got)
	}
}

func TestTimeTrack(t *testing.T) {
	var msg string
	TimeTrack(time.Now(), "Regenerate", func(format string, v ...interface{}) {
		msg = fmt.Sprintf(format, v...)
	})
	if !strings.HasPrefix(msg, "Regenerate took ") {
		t.Fatalf("unexpected message %q", msg)
	}
}
