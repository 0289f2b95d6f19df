package source

import "testing"

func TestPositionRoundTrip(t *testing.T) {
	fs := NewFileSet()
	// "😀" занимает 4 байта и две UTF-16 единицы
	file := fs.Get(fs.AddVirtual("p.html", []byte("<p>😀x</p>\n<b>é</b>")))

	tests := []struct {
		offset uint32
		pos    Position
	}{
		{offset: 0, pos: Position{Line: 0, Character: 0}},
		{offset: 3, pos: Position{Line: 0, Character: 3}},
		{offset: 7, pos: Position{Line: 0, Character: 5}},
		{offset: 8, pos: Position{Line: 0, Character: 6}},
		{offset: 12, pos: Position{Line: 0, Character: 10}},
		{offset: 13, pos: Position{Line: 1, Character: 0}},
		{offset: 18, pos: Position{Line: 1, Character: 4}},
	}
	for _, tt := range tests {
		if got := file.Position(tt.offset); got != tt.pos {
			t.Errorf("Position(%d) = %+v, want %+v", tt.offset, got, tt.pos)
		}
		if got := file.Offset(tt.pos); got != tt.offset {
			t.Errorf("Offset(%+v) = %d, want %d", tt.pos, got, tt.offset)
		}
	}
}

func TestOffsetClamps(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("c.html", []byte("ab\ncd")))

	if got := file.Offset(Position{Line: 0, Character: 40}); got != 2 {
		t.Fatalf("past line end clamped to %d, want 2", got)
	}
	if got := file.Offset(Position{Line: 7, Character: 0}); got != 5 {
		t.Fatalf("past last line clamped to %d, want 5", got)
	}
	if got := file.Position(99); got != (Position{Line: 1, Character: 2}) {
		t.Fatalf("Position past end = %+v", got)
	}
}

func TestRuneOffsets(t *testing.T) {
	offs := RuneOffsets("aé😀")
	want := []uint32{0, 1, 3, 7}
	if len(offs) != len(want) {
		t.Fatalf("RuneOffsets = %v, want %v", offs, want)
	}
	for i := range want {
		if offs[i] != want[i] {
			t.Fatalf("RuneOffsets = %v, want %v", offs, want)
		}
	}
}

func TestPositionLess(t *testing.T) {
	if !(Position{Line: 0, Character: 9}).Less(Position{Line: 1, Character: 0}) {
		t.Fatal("line must dominate")
	}
	if (Position{Line: 2, Character: 3}).Less(Position{Line: 2, Character: 3}) {
		t.Fatal("equal positions are not less")
	}
}
