package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/penmap/pkg/diag"
)

func TestReadDefines(t *testing.T) {
	src := `# castle textures
define wall textures/base_wall/lfwall13f3
define floor   textures/hell/qfloor   # trailing comment
   define wall_transform ( ( 0.03 0 0 ) ( 0 0.03 0 ) )
something else entirely
`
	d, err := ReadDefines(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"wall":           "textures/base_wall/lfwall13f3",
		"floor":          "textures/hell/qfloor",
		"wall_transform": "( ( 0.03 0 0 ) ( 0 0.03 0 ) )",
	}
	if len(d.Textures) != len(want) {
		t.Fatalf("got %v", d.Textures)
	}
	for k, v := range want {
		if d.Textures[k] != v {
			t.Errorf("%s = %q, want %q", k, d.Textures[k], v)
		}
	}
}

func TestReadDefinesMissingValue(t *testing.T) {
	_, err := ReadDefines(strings.NewReader("define wall textures/a\ndefine floor\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if e, ok := diag.As(err); !ok || e.Line != 2 {
		t.Errorf("error = %v, want line 2", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	ss := filepath.Join(dir, "castle.ss")
	lisp := filepath.Join(dir, "castle.zy")
	bad := filepath.Join(dir, "bad.zy")
	if err := os.WriteFile(ss, []byte("define wall textures/ss\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(lisp, []byte(`(texture :wall "textures/zy")`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(`(colour :nowhere 1 2 3)`), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := NewEngine()
	d, err := eng.LoadFile(ss)
	if err != nil || d.Textures["wall"] != "textures/ss" {
		t.Errorf("LoadFile(.ss) = %v, %v", d, err)
	}
	d, err = eng.LoadFile(lisp)
	if err != nil || d.Textures["wall"] != "textures/zy" {
		t.Errorf("LoadFile(.zy) = %v, %v", d, err)
	}
	if _, err := eng.LoadFile(bad); diag.KindOf(err) != diag.Parse {
		t.Errorf("LoadFile(bad) err = %v, want parse error", err)
	}
	if _, err := eng.LoadFile(filepath.Join(dir, "missing.ss")); err == nil {
		t.Error("expected error for a missing file")
	}
}
