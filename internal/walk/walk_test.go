package walk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/codetag/codetag/internal/ignore"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func rels(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		r := e.Rel
		if e.Dir {
			r += "/"
		}
		out = append(out, r)
	}
	return out
}

func TestRunDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.txt", "b")
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "sub/z.txt", "z")
	writeFile(t, root, "sub/m.txt", "m")
	writeFile(t, root, "zz.txt", "zz")

	want := []string{"a.txt", "b.txt", "sub/", "sub/m.txt", "sub/z.txt", "zz.txt"}

	for run := 0; run < 2; run++ {
		eng := ignore.New(root, ignore.Options{})
		entries, warnings, err := Collect(context.Background(), root, eng, Options{})
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		if len(warnings) != 0 {
			t.Fatalf("warnings = %v, want none", warnings)
		}
		if got := rels(entries); !reflect.DeepEqual(got, want) {
			t.Errorf("run %d order = %v, want %v", run, got, want)
		}
	}
}

func TestRunFileSizes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "data.txt", "12345")

	eng := ignore.New(root, ignore.Options{})
	entries, _, err := Collect(context.Background(), root, eng, Options{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Size != 5 {
		t.Errorf("entries = %+v, want one file of size 5", entries)
	}
}

func TestRunHiddenPolicy(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".hidden.txt", "h")
	writeFile(t, root, ".config/settings.yml", "x")
	writeFile(t, root, "visible.txt", "v")

	eng := ignore.New(root, ignore.Options{})
	entries, _, err := Collect(context.Background(), root, eng, Options{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got, want := rels(entries), []string{"visible.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("default walk = %v, want %v", got, want)
	}

	eng = ignore.New(root, ignore.Options{})
	entries, _, err = Collect(context.Background(), root, eng, Options{IncludeHidden: true})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	want := []string{".config/", ".config/settings.yml", ".hidden.txt", "visible.txt"}
	if got := rels(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("hidden walk = %v, want %v", got, want)
	}
}

func TestRunIncludeHiddenStillSkipsGitDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main")
	writeFile(t, root, "main.go", "package main")

	eng := ignore.New(root, ignore.Options{})
	entries, _, err := Collect(context.Background(), root, eng, Options{IncludeHidden: true})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got, want := rels(entries), []string{"main.go"}; !reflect.DeepEqual(got, want) {
		t.Errorf("walk = %v, want %v", got, want)
	}
}

func TestRunPrunesIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "build/\n*.log\n")
	writeFile(t, root, "build/out.bin", "x")
	writeFile(t, root, "app.log", "x")
	writeFile(t, root, "main.go", "package main")

	eng := ignore.New(root, ignore.Options{})
	entries, _, err := Collect(context.Background(), root, eng, Options{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got, want := rels(entries), []string{"main.go"}; !reflect.DeepEqual(got, want) {
		t.Errorf("walk = %v, want %v", got, want)
	}
}

func TestRunDeepNegationReincludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.log\n")
	writeFile(t, root, "sub/.gitignore", "!keep.log\n")
	writeFile(t, root, "sub/keep.log", "kept")
	writeFile(t, root, "sub/drop.log", "dropped")
	writeFile(t, root, "top.log", "dropped")

	eng := ignore.New(root, ignore.Options{})
	entries, _, err := Collect(context.Background(), root, eng, Options{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got, want := rels(entries), []string{"sub/", "sub/keep.log"}; !reflect.DeepEqual(got, want) {
		t.Errorf("walk = %v, want %v", got, want)
	}
}

func TestRunSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real.txt", "r")
	writeFile(t, root, "dir/inner.txt", "i")
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "linkdir")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	eng := ignore.New(root, ignore.Options{})
	entries, _, err := Collect(context.Background(), root, eng, Options{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	want := []string{"dir/", "dir/inner.txt", "real.txt"}
	if got := rels(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("walk = %v, want %v", got, want)
	}
}

func TestRunRootMustBeDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.txt", "x")

	eng := ignore.New(root, ignore.Options{})
	_, _, err := Collect(context.Background(), filepath.Join(root, "file.txt"), eng, Options{})
	if err == nil {
		t.Fatal("Collect() on a file succeeded, want error")
	}

	_, _, err = Collect(context.Background(), filepath.Join(root, "absent"), eng, Options{})
	if err == nil {
		t.Fatal("Collect() on a missing path succeeded, want error")
	}
}

func TestRunCallbackErrorAborts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "b.txt", "b")

	sentinel := errors.New("stop here")
	seen := 0
	eng := ignore.New(root, ignore.Options{})
	_, err := Run(context.Background(), root, eng, Options{}, func(Entry) error {
		seen++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Run() error = %v, want sentinel", err)
	}
	if seen != 1 {
		t.Errorf("callback ran %d times, want 1", seen)
	}
}

func TestRunCancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := ignore.New(root, ignore.Options{})
	_, _, err := Collect(ctx, root, eng, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Collect() error = %v, want context.Canceled", err)
	}
}
