package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseManifest_ValidFull(t *testing.T) {
	yaml := `
externs:
  - name: getenv
    params: [str]
    returns: str
  - name: exit
    params: [int]
cache:
  enabled: true
  path: build/cache.db
target: x86_64-unknown-linux-gnu
`
	m, err := ParseManifest([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Externs) != 2 {
		t.Fatalf("expected 2 externs, got %d", len(m.Externs))
	}
	ext := m.Externs[0]
	if ext.Name != "getenv" {
		t.Errorf("name = %q, want getenv", ext.Name)
	}
	if len(ext.Params) != 1 || ext.Params[0] != "str" {
		t.Errorf("params = %v, want [str]", ext.Params)
	}
	if ext.Returns != "str" {
		t.Errorf("returns = %q, want str", ext.Returns)
	}
	if m.Externs[1].Returns != "" {
		t.Errorf("exit returns = %q, want empty", m.Externs[1].Returns)
	}
	if !m.Cache.Enabled {
		t.Error("expected cache enabled")
	}
	if m.Cache.Path != "build/cache.db" {
		t.Errorf("cache path = %q, want build/cache.db", m.Cache.Path)
	}
	if m.Target != "x86_64-unknown-linux-gnu" {
		t.Errorf("target = %q", m.Target)
	}
}

func TestParseManifest_EmptyIsValid(t *testing.T) {
	m, err := ParseManifest([]byte(""), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Externs) != 0 {
		t.Errorf("expected no externs, got %d", len(m.Externs))
	}
	if m.Cache.Enabled {
		t.Error("cache should default to disabled")
	}
	if m.Target != "" {
		t.Errorf("target = %q, want empty", m.Target)
	}
}

func TestParseManifest_DefaultCachePath(t *testing.T) {
	yaml := `
cache:
  enabled: true
`
	m, err := ParseManifest([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Cache.Path != DefaultCachePath {
		t.Errorf("cache path = %q, want %q", m.Cache.Path, DefaultCachePath)
	}
}

func TestParseManifest_ComplexTypeStrings(t *testing.T) {
	yaml := `
externs:
  - name: read_block
    params: [ptr uint8, int]
    returns: arr<uint8, 512>
`
	m, err := ParseManifest([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Type strings pass through verbatim; the resolver parses them.
	params := m.Externs[0].Params
	if params[0] != "ptr uint8" || params[1] != "int" {
		t.Errorf("params = %v", params)
	}
	if m.Externs[0].Returns != "arr<uint8, 512>" {
		t.Errorf("returns = %q", m.Externs[0].Returns)
	}
}

func TestParseManifest_ErrorNoName(t *testing.T) {
	yaml := `
externs:
  - params: [int]
    returns: int
`
	_, err := ParseManifest([]byte(yaml), "test.yaml")
	if err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestParseManifest_ErrorEmptyParam(t *testing.T) {
	yaml := `
externs:
  - name: putc
    params: ["int", ""]
`
	_, err := ParseManifest([]byte(yaml), "test.yaml")
	if err == nil {
		t.Fatal("expected error for empty param type")
	}
}

func TestParseManifest_ErrorMalformedYaml(t *testing.T) {
	_, err := ParseManifest([]byte("externs: [broken"), "test.yaml")
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestDefault(t *testing.T) {
	m := Default()
	if len(m.Externs) != 0 {
		t.Errorf("expected no externs, got %d", len(m.Externs))
	}
	if m.Cache.Enabled {
		t.Error("cache should default to disabled")
	}
	if m.Cache.Path != DefaultCachePath {
		t.Errorf("cache path = %q, want %q", m.Cache.Path, DefaultCachePath)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ftl.yaml")
	content := `
externs:
  - name: clock
    returns: int
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Externs) != 1 || m.Externs[0].Name != "clock" {
		t.Errorf("externs = %+v", m.Externs)
	}
}

func TestLoadManifest_MissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "ftl.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFindManifest(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(tmpDir, "ftl.yaml")
	if err := os.WriteFile(cfgPath, []byte("target: wasm32\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// FindManifest from a deep subdirectory should walk up to it.
	found, err := FindManifest(subDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != cfgPath {
		t.Errorf("found = %q, want %q", found, cfgPath)
	}

	// A directory with no manifest anywhere above yields empty, not an error.
	found, err = FindManifest(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != "" {
		t.Errorf("expected empty, got %q", found)
	}
}

func TestFindManifest_YmlAlternative(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "ftl.yml")
	if err := os.WriteFile(cfgPath, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := FindManifest(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != cfgPath {
		t.Errorf("found = %q, want %q", found, cfgPath)
	}
}

func TestExternSignatures(t *testing.T) {
	yaml := `
externs:
  - name: getenv
    params: [str]
    returns: str
  - name: exit
    params: [int]
`
	m, err := ParseManifest([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sigs := m.ExternSignatures()
	if len(sigs) != 2 {
		t.Fatalf("expected 2 signatures, got %d", len(sigs))
	}
	if sigs[0].Name != "getenv" || sigs[0].Returns != "str" {
		t.Errorf("sigs[0] = %+v", sigs[0])
	}
	if len(sigs[1].Params) != 1 || sigs[1].Params[0] != "int" {
		t.Errorf("sigs[1].Params = %v", sigs[1].Params)
	}
	if sigs[1].Returns != "" {
		t.Errorf("sigs[1].Returns = %q, want empty", sigs[1].Returns)
	}

	if Default().ExternSignatures() != nil {
		t.Error("empty manifest should yield nil signatures")
	}
}

func TestCachePath(t *testing.T) {
	m := Default()
	got := m.CachePath("/proj")
	want := filepath.Join("/proj", DefaultCachePath)
	if got != want {
		t.Errorf("CachePath = %q, want %q", got, want)
	}

	m.Cache.Path = "/var/cache/ftl.db"
	if got := m.CachePath("/proj"); got != "/var/cache/ftl.db" {
		t.Errorf("absolute CachePath = %q, want /var/cache/ftl.db", got)
	}
}
