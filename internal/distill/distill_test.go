package distill

import (
	"context"
	"strings"
	"testing"

	"github.com/codetag/codetag/internal/parser"
)

func mustSpec(t *testing.T, language string) *parser.Spec {
	t.Helper()
	spec, ok := parser.Lookup(language)
	if !ok {
		t.Fatalf("no parser registered for %s", language)
	}
	return spec
}

func TestSignaturesPython(t *testing.T) {
	source := `"""Module doc."""


def greet(name):
    """Say hello."""
    msg = "hi " + name
    return msg


def silent():
    return 1
`
	want := `"""Module doc."""


def greet(name):
    """Say hello."""
    ...


def silent():
    ...
`
	spec := mustSpec(t, "Python")
	got, err := File(context.Background(), spec, "demo.py", []byte(source), Options{Level: LevelSignatures})
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if got != want {
		t.Errorf("File() =\n%s\nwant\n%s", got, want)
	}
}

func TestSignaturesNestedFunctionRidesAlong(t *testing.T) {
	source := `def outer():
    def inner():
        return 2
    return inner
`
	want := `def outer():
    ...
`
	spec := mustSpec(t, "Python")
	got, err := File(context.Background(), spec, "demo.py", []byte(source), Options{Level: LevelSignatures})
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if got != want {
		t.Errorf("File() =\n%s\nwant\n%s", got, want)
	}
}

func TestSignaturesGo(t *testing.T) {
	source := `package demo

// Add sums two ints.
func Add(a, b int) int {
	return a + b
}
`
	want := "package demo\n\n// Add sums two ints.\nfunc Add(a, b int) int  { /* ... */ }\n"

	spec := mustSpec(t, "Go")
	got, err := File(context.Background(), spec, "demo.go", []byte(source), Options{Level: LevelSignatures})
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if got != want {
		t.Errorf("File() = %q, want %q", got, want)
	}
}

func TestSignaturesStripsArrowFunctions(t *testing.T) {
	source := "const f = (x) => {\n  return x + 1;\n};\n"
	want := "const f = (x) =>  { /* ... */ };\n"

	spec := mustSpec(t, "JavaScript")
	got, err := File(context.Background(), spec, "demo.js", []byte(source), Options{Level: LevelSignatures})
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if got != want {
		t.Errorf("File() = %q, want %q", got, want)
	}
}

func TestOutlinePython(t *testing.T) {
	source := `class Greeter:
    def greet(self):
        return 1

def top():
    pass
`
	spec := mustSpec(t, "Python")

	got, err := File(context.Background(), spec, "demo.py", []byte(source), Options{Level: LevelOutline})
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	want := "Greeter\n  greet\ntop\n"
	if got != want {
		t.Errorf("File() = %q, want %q", got, want)
	}

	got, err = File(context.Background(), spec, "demo.py", []byte(source), Options{Level: LevelOutline, Anchors: true})
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	want = "@1 Greeter\n  @2 greet\n@5 top\n"
	if got != want {
		t.Errorf("File() with anchors = %q, want %q", got, want)
	}
}

func TestOutlineGoGroupedTypes(t *testing.T) {
	source := `package demo

type (
	A struct{}
	B struct{}
)

func F() {}
`
	spec := mustSpec(t, "Go")
	got, err := File(context.Background(), spec, "demo.go", []byte(source), Options{Level: LevelOutline})
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	want := "A\nB\nF\n"
	if got != want {
		t.Errorf("File() = %q, want %q", got, want)
	}
}

func TestLevelsMonotone(t *testing.T) {
	source := `class Greeter:
    """Doc."""

    def greet(self, name):
        """Hello."""
        return "hi " + name


def main():
    g = Greeter()
    print(g.greet("you"))
`
	spec := mustSpec(t, "Python")

	level1, err := File(context.Background(), spec, "demo.py", []byte(source), Options{Level: LevelSignatures})
	if err != nil {
		t.Fatalf("level 1 error = %v", err)
	}
	level2, err := File(context.Background(), spec, "demo.py", []byte(source), Options{Level: LevelOutline})
	if err != nil {
		t.Fatalf("level 2 error = %v", err)
	}

	if len(level2) > len(level1) {
		t.Errorf("level 2 output (%d bytes) longer than level 1 (%d bytes)", len(level2), len(level1))
	}
}

func TestDeterministicOutput(t *testing.T) {
	source := strings.Repeat("def f():\n    return 1\n\n", 10)
	spec := mustSpec(t, "Python")

	first, err := File(context.Background(), spec, "demo.py", []byte(source), Options{Level: LevelSignatures})
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	second, err := File(context.Background(), spec, "demo.py", []byte(source), Options{Level: LevelSignatures})
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if first != second {
		t.Error("repeated distillation differs, want byte-identical output")
	}
}

func TestInvalidLevel(t *testing.T) {
	spec := mustSpec(t, "Python")
	if _, err := File(context.Background(), spec, "demo.py", []byte("x = 1\n"), Options{Level: 3}); err == nil {
		t.Fatal("File() with level 3 succeeded, want error")
	}
}
