// Package project loads and validates paw.toml manifests.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project manifest file looked up at the root.
const ManifestName = "paw.toml"

// SourceExt is the extension of compilable source files.
const SourceExt = ".paw"

var (
	// ErrPackageSectionMissing indicates that [package] is missing.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing.
	ErrPackageNameMissing = errors.New("missing [package].name")
	// ErrNoSources indicates the source directory holds no .paw files.
	ErrNoSources = errors.New("no source files")
)

// Manifest is a parsed paw.toml.
type Manifest struct {
	Name    string // [package].name
	Version string // [package].version, optional
	Src     string // [package].src, defaults to "src"
	Output  string // [build].output, optional
	Cache   bool   // [build].cache, defaults to true
	Root    string // directory holding the manifest
}

type manifestFile struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
		Src     string `toml:"src"`
	} `toml:"package"`
	Build struct {
		Output string `toml:"output"`
		Cache  *bool  `toml:"cache"`
	} `toml:"build"`
}

// Load parses the manifest at path.
func Load(path string) (Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	name := strings.TrimSpace(cfg.Package.Name)
	if name == "" {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	src := strings.TrimSpace(cfg.Package.Src)
	if src == "" {
		src = "src"
	}
	cache := true
	if cfg.Build.Cache != nil {
		cache = *cfg.Build.Cache
	}
	return Manifest{
		Name:    name,
		Version: strings.TrimSpace(cfg.Package.Version),
		Src:     src,
		Output:  strings.TrimSpace(cfg.Build.Output),
		Cache:   cache,
		Root:    filepath.Dir(path),
	}, nil
}

// Find walks up from dir looking for paw.toml.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or any parent", ManifestName, dir)
		}
		dir = parent
	}
}

// Sources lists the manifest's .paw files in deterministic order.
func (m Manifest) Sources() ([]string, error) {
	srcDir := filepath.Join(m.Root, m.Src)
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read source dir %s: %w", srcDir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), SourceExt) {
			continue
		}
		out = append(out, filepath.Join(srcDir, e.Name()))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", srcDir, ErrNoSources)
	}
	return out, nil
}
