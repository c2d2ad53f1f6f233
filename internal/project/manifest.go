// Package project loads the ftl.yaml project manifest.
//
// The manifest supplies what a single source file cannot declare itself:
//   - extern signatures for functions linked in at build time
//   - build cache settings for the compile command
//   - the target triple handed to the backend
//
// A missing manifest is not an error; every field has a usable default.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/linuskmr/fortytwo-lang/internal/config"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
)

// Manifest represents the top-level ftl.yaml configuration.
type Manifest struct {
	// Externs lists functions implemented outside the translation unit.
	// Each entry injects a symbol exactly as if the source held an extern
	// declaration with the same signature.
	Externs []Extern `yaml:"externs,omitempty"`

	// Cache configures the compilation cache consulted by compile runs.
	Cache CacheConfig `yaml:"cache,omitempty"`

	// Target is the target triple recorded in emitted modules
	// (e.g. "x86_64-unknown-linux-gnu"). Empty means the host target.
	Target string `yaml:"target,omitempty"`
}

// Extern is one manifest-supplied extern function signature.
type Extern struct {
	// Name is the function name visible to source code.
	Name string `yaml:"name"`

	// Params holds the parameter types as surface type expressions
	// (e.g. "int", "ptr str", "arr<int, 4>"). The resolver parses them,
	// so they may mention structs declared in the source.
	Params []string `yaml:"params,omitempty"`

	// Returns is the return type, empty when the function returns nothing.
	Returns string `yaml:"returns,omitempty"`
}

// CacheConfig controls the build cache.
type CacheConfig struct {
	// Enabled turns the cache on. Off by default: check runs must never
	// depend on prior state, so only explicit opt-in makes compile memoize.
	Enabled bool `yaml:"enabled,omitempty"`

	// Path is the cache database file, resolved relative to the manifest
	// directory. Defaults to ".ftl/cache.db".
	Path string `yaml:"path,omitempty"`
}

// DefaultCachePath is the cache database location used when the manifest
// does not name one.
const DefaultCachePath = ".ftl/cache.db"

// Default returns the manifest used when no ftl.yaml exists.
func Default() *Manifest {
	m := &Manifest{}
	m.setDefaults()
	return m
}

// LoadManifest reads and parses an ftl.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return ParseManifest(data, path)
}

// ParseManifest parses ftl.yaml content from bytes.
// The path argument is used only for error messages.
func ParseManifest(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := m.validate(path); err != nil {
		return nil, err
	}
	m.setDefaults()
	return &m, nil
}

// FindManifest searches for ftl.yaml starting from dir and walking up to
// parent directories, similar to how .gitignore is found.
// Returns the path to the manifest and nil error if found, or empty string
// and nil error if not found.
func FindManifest(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, config.ManifestFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		// Also check ftl.yml (common alternative)
		candidate = filepath.Join(dir, "ftl.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// validate checks the manifest for structural errors. Whether a type string
// actually names a type is the resolver's call (it can see source structs),
// so only omissions are rejected here.
func (m *Manifest) validate(path string) error {
	for i, ext := range m.Externs {
		if ext.Name == "" {
			return fmt.Errorf("%s: externs[%d]: name is required", path, i)
		}
		for j, param := range ext.Params {
			if param == "" {
				return fmt.Errorf("%s: externs[%d] (%s): params[%d] is empty", path, i, ext.Name, j)
			}
		}
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (m *Manifest) setDefaults() {
	if m.Cache.Path == "" {
		m.Cache.Path = DefaultCachePath
	}
}

// ExternSignatures converts the extern entries into the form the pipeline
// hands to the resolver.
func (m *Manifest) ExternSignatures() []pipeline.ExternSignature {
	if len(m.Externs) == 0 {
		return nil
	}
	sigs := make([]pipeline.ExternSignature, len(m.Externs))
	for i, ext := range m.Externs {
		sigs[i] = pipeline.ExternSignature{
			Name:    ext.Name,
			Params:  ext.Params,
			Returns: ext.Returns,
		}
	}
	return sigs
}

// CachePath resolves the cache database path against the manifest's
// directory. Absolute paths are kept as-is.
func (m *Manifest) CachePath(manifestDir string) string {
	if filepath.IsAbs(m.Cache.Path) {
		return m.Cache.Path
	}
	return filepath.Join(manifestDir, m.Cache.Path)
}
