package count

import (
	"strings"
	"testing"
	"testing/iotest"
)

func TestScanLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty stream", input: "", want: 0},
		{name: "single terminated line", input: "hello\n", want: 1},
		{name: "final line without newline counts", input: "one\ntwo", want: 2},
		{name: "trailing newline does not add a line", input: "one\ntwo\n", want: 2},
		{name: "blank lines count", input: "\n\n\n", want: 3},
		{name: "crlf endings", input: "a\r\nb\r\n", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := Scan(strings.NewReader(tt.input), DefaultMarkers)
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if stats.Lines != tt.want {
				t.Errorf("Lines = %d, want %d", stats.Lines, tt.want)
			}
		})
	}
}

func TestScanMarkers(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTodo  int
		wantFixme int
	}{
		{
			name:      "one todo two fixme",
			input:     "# TODO: refactor\nx = 1\n# FIXME: broken\n# FIXME again\n",
			wantTodo:  1,
			wantFixme: 2,
		},
		{
			name:      "matching is case sensitive",
			input:     "# todo: lowercase\n# Fixme: mixed\n",
			wantTodo:  0,
			wantFixme: 0,
		},
		{
			name:      "two markers on one line",
			input:     "// TODO and FIXME both here\n",
			wantTodo:  1,
			wantFixme: 1,
		},
		{
			name:      "substring match inside a word",
			input:     "TODOS = []\n",
			wantTodo:  1,
			wantFixme: 0,
		},
		{
			name:      "no markers still reports zeros",
			input:     "plain text\n",
			wantTodo:  0,
			wantFixme: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := Scan(strings.NewReader(tt.input), DefaultMarkers)
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if got := stats.Markers["TODO"]; got != tt.wantTodo {
				t.Errorf("Markers[TODO] = %d, want %d", got, tt.wantTodo)
			}
			if got := stats.Markers["FIXME"]; got != tt.wantFixme {
				t.Errorf("Markers[FIXME] = %d, want %d", got, tt.wantFixme)
			}
		})
	}
}

func TestScanMarkerAcrossChunks(t *testing.T) {
	// A one-byte reader forces every marker to straddle read boundaries.
	input := "start\n# TODO one\n# FIXME two\nTODO\n"
	stats, err := Scan(iotest.OneByteReader(strings.NewReader(input)), DefaultMarkers)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if got := stats.Markers["TODO"]; got != 2 {
		t.Errorf("Markers[TODO] = %d, want 2", got)
	}
	if got := stats.Markers["FIXME"]; got != 1 {
		t.Errorf("Markers[FIXME] = %d, want 1", got)
	}
	if stats.Lines != 4 {
		t.Errorf("Lines = %d, want 4", stats.Lines)
	}
}

func TestScanBinaryDegrade(t *testing.T) {
	stats, err := Scan(strings.NewReader("looks like text\x00but is not\n"), DefaultMarkers)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if !stats.Binary {
		t.Error("Binary = false, want true for stream containing NUL")
	}
}

func TestScanNoMarkers(t *testing.T) {
	stats, err := Scan(strings.NewReader("TODO\nFIXME\n"), nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(stats.Markers) != 0 {
		t.Errorf("Markers = %v, want empty map", stats.Markers)
	}
	if stats.Lines != 2 {
		t.Errorf("Lines = %d, want 2", stats.Lines)
	}
}
