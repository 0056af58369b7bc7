package project_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"paw/internal/project"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, project.ManifestName)
	writeFile(t, path, `
[package]
name = "demo"
`)
	m, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != "demo" {
		t.Errorf("Name = %q", m.Name)
	}
	if m.Src != "src" {
		t.Errorf("Src = %q, want src", m.Src)
	}
	if !m.Cache {
		t.Error("Cache default is not true")
	}
	if m.Root != dir {
		t.Errorf("Root = %q, want %q", m.Root, dir)
	}
}

func TestLoadFullManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, project.ManifestName)
	writeFile(t, path, `
[package]
name = "demo"
version = "0.2.0"
src = "code"

[build]
output = "out/demo.ir"
cache = false
`)
	m, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Version != "0.2.0" || m.Src != "code" || m.Output != "out/demo.ir" || m.Cache {
		t.Errorf("manifest = %+v", m)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"missing_package", `[build]
output = "x"
`, project.ErrPackageSectionMissing},
		{"missing_name", `[package]
version = "1.0"
`, project.ErrPackageNameMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), project.ManifestName)
			writeFile(t, path, tt.content)
			if _, err := project.Load(path); !errors.Is(err, tt.wantErr) {
				t.Errorf("Load err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, project.ManifestName), "[package]\nname = \"demo\"\n")
	nested := filepath.Join(dir, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	found, err := project.Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	want := filepath.Join(dir, project.ManifestName)
	if found != want {
		t.Errorf("Find = %q, want %q", found, want)
	}
}

func TestSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, project.ManifestName)
	writeFile(t, path, "[package]\nname = \"demo\"\n")
	writeFile(t, filepath.Join(dir, "src", "b.paw"), "fn b() {}\n")
	writeFile(t, filepath.Join(dir, "src", "a.paw"), "fn a() {}\n")
	writeFile(t, filepath.Join(dir, "src", "notes.txt"), "ignored\n")

	m, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	srcs, err := m.Sources()
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(srcs) != 2 {
		t.Fatalf("source count = %d: %v", len(srcs), srcs)
	}
	if filepath.Base(srcs[0]) != "a.paw" || filepath.Base(srcs[1]) != "b.paw" {
		t.Errorf("sources = %v, want a.paw then b.paw", srcs)
	}
}

func TestSourcesEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, project.ManifestName)
	writeFile(t, path, "[package]\nname = \"demo\"\n")
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	m, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := m.Sources(); !errors.Is(err, project.ErrNoSources) {
		t.Errorf("Sources err = %v, want ErrNoSources", err)
	}
}
