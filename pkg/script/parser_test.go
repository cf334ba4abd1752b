package script

import (
	"strings"
	"testing"
)

func mustParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	return p
}

func TestParseStatements(t *testing.T) {
	src := `
# two pads and a track
pad   A  net 1 at 0 0
via   V  net 1 at 500 -20
track T  net 1 from 0 0 to 1000 0
zone  Z  net 2 outline (0 0) (100 0) (100 100) (0 100) hole (10 10) (20 10) (20 20) hole (50 50) (60 50) (60 60)
move  A  to 10 10
remove T
recalc
recalc 2
expect unconnected 1 = 2
expect unconnected = 0
expect connected A V
expect disconnected A Z
print unconnected
print stats 1
`
	prog, err := mustParser(t).ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	st := prog.Statements
	if len(st) != 14 {
		t.Fatalf("got %d statements, want 14", len(st))
	}

	if p := st[0].Place; p == nil || p.Kind != "pad" || p.Name != "A" || p.Net != 1 || p.At != (Coord{0, 0}) {
		t.Errorf("pad: %+v", st[0].Place)
	}
	if st[0].Pos.Line != 3 {
		t.Errorf("pad is on line %d, want 3", st[0].Pos.Line)
	}
	if p := st[1].Place; p == nil || p.Kind != "via" || p.At != (Coord{500, -20}) {
		t.Errorf("via: %+v", st[1].Place)
	}
	if tr := st[2].Track; tr == nil || tr.Name != "T" || tr.From != (Coord{0, 0}) || tr.To != (Coord{1000, 0}) {
		t.Errorf("track: %+v", st[2].Track)
	}

	z := st[3].Zone
	if z == nil || z.Net != 2 || len(z.Outline) != 4 || len(z.Holes) != 2 {
		t.Fatalf("zone: %+v", z)
	}
	if v := z.Outline[2]; v.X != 100 || v.Y != 100 {
		t.Errorf("outline[2] = %+v", v)
	}
	if len(z.Holes[0].Points) != 3 || z.Holes[1].Points[0].X != 50 {
		t.Errorf("holes: %+v %+v", z.Holes[0], z.Holes[1])
	}

	if m := st[4].Move; m == nil || m.Name != "A" || m.To != (Coord{10, 10}) {
		t.Errorf("move: %+v", st[4].Move)
	}
	if rm := st[5].Remove; rm == nil || rm.Name != "T" {
		t.Errorf("remove: %+v", st[5].Remove)
	}
	if rc := st[6].Recalc; rc == nil || rc.Net != nil {
		t.Errorf("recalc: %+v", st[6].Recalc)
	}
	if rc := st[7].Recalc; rc == nil || rc.Net == nil || *rc.Net != 2 {
		t.Errorf("recalc 2: %+v", st[7].Recalc)
	}
	if e := st[8].Expect; e == nil || e.Count == nil || e.Count.Net == nil || *e.Count.Net != 1 || e.Count.Want != 2 {
		t.Errorf("expect unconnected 1: %+v", st[8].Expect)
	}
	if e := st[9].Expect; e == nil || e.Count == nil || e.Count.Net != nil || e.Count.Want != 0 {
		t.Errorf("expect unconnected: %+v", st[9].Expect)
	}
	if e := st[10].Expect; e == nil || e.Pair == nil || e.Pair.Mode != "connected" || e.Pair.A != "A" || e.Pair.B != "V" {
		t.Errorf("expect connected: %+v", st[10].Expect)
	}
	if e := st[11].Expect; e == nil || e.Pair == nil || e.Pair.Mode != "disconnected" {
		t.Errorf("expect disconnected: %+v", st[11].Expect)
	}
	if p := st[12].Print; p == nil || p.What != "unconnected" || p.Net != nil {
		t.Errorf("print: %+v", st[12].Print)
	}
	if p := st[13].Print; p == nil || p.What != "stats" || p.Net == nil || *p.Net != 1 {
		t.Errorf("print stats: %+v", st[13].Print)
	}
}

func TestParseNames(t *testing.T) {
	prog, err := mustParser(t).ParseString("expect connected R1-1 U3_A.2")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	p := prog.Statements[0].Expect.Pair
	if p.A != "R1-1" || p.B != "U3_A.2" {
		t.Errorf("names %q %q", p.A, p.B)
	}
}

func TestParseEmpty(t *testing.T) {
	prog, err := mustParser(t).ParseString("# nothing here\n\n")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(prog.Statements) != 0 {
		t.Errorf("got %d statements", len(prog.Statements))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing net code", "pad A net at 0 0"},
		{"missing coordinate", "pad A net 1 at 0"},
		{"unknown statement", "drill A"},
		{"zone without outline", "zone Z net 1 hole (0 0) (1 0) (1 1)"},
		{"unclosed vertex", "zone Z net 1 outline (0 0 (1 0)"},
		{"expect without count", "expect unconnected 1 ="},
		{"bad character", "pad A net 1 at 0 0 ;"},
	}
	p := mustParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseString(tt.src)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), "parse error") {
				t.Errorf("error %q does not mention parsing", err)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	prog, err := mustParser(t).ParseFile("testdata/edits.rats")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(prog.Statements) == 0 {
		t.Fatal("no statements")
	}
	if got := prog.Statements[0].Pos.Filename; got != "testdata/edits.rats" {
		t.Errorf("position file %q", got)
	}

	if _, err := mustParser(t).ParseFile("testdata/missing.rats"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
