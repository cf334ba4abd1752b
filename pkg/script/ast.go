package script

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Program is a parsed edit script
type Program struct {
	Statements []*Statement `@@*`
}

// Statement is one edit, query or assertion
type Statement struct {
	Pos lexer.Position

	Place  *Place  `  @@`
	Track  *Track  `| @@`
	Zone   *Zone   `| @@`
	Move   *Move   `| @@`
	Remove *Remove `| @@`
	Recalc *Recalc `| @@`
	Expect *Expect `| @@`
	Print  *Print  `| @@`
}

// Coord is a bare x y pair
// Example: 100 -250
type Coord struct {
	X int `@Int`
	Y int `@Int`
}

// Vertex is a parenthesised polygon point
// Example: (100 -250)
type Vertex struct {
	X int `"(" @Int`
	Y int `@Int ")"`
}

// Place adds a pad or via
// Example: pad A net 1 at 0 0
type Place struct {
	Kind string `@( "pad" | "via" )`
	Name string `@Ident`
	Net  int    `"net" @Int`
	At   Coord  `"at" @@`
}

// Track adds a track segment
// Example: track T net 1 from 0 0 to 1000 0
type Track struct {
	Name string `"track" @Ident`
	Net  int    `"net" @Int`
	From Coord  `"from" @@`
	To   Coord  `"to" @@`
}

// Zone adds a zone with one filled area
// Example: zone Z net 2 outline (0 0) (100 0) (100 100) hole (10 10) (20 10) (20 20)
type Zone struct {
	Name    string    `"zone" @Ident`
	Net     int       `"net" @Int`
	Outline []*Vertex `"outline" @@+`
	Holes   []*Hole   `@@*`
}

// Hole is a cutout of a zone area
type Hole struct {
	Points []*Vertex `"hole" @@+`
}

// Move repositions a pad or via
// Example: move A to 10 10
type Move struct {
	Name string `"move" @Ident`
	To   Coord  `"to" @@`
}

// Remove deletes an item
type Remove struct {
	Name string `"remove" @Ident`
}

// Recalc recomputes one net, or every net when no code is given
type Recalc struct {
	Net *int `"recalc" @Int?`
}

// Expect asserts a property of the ratsnest
type Expect struct {
	Count *ExpectCount `  "expect" @@`
	Pair  *ExpectPair  `| "expect" @@`
}

// ExpectCount asserts the number of missing links of a net, or of the
// board when no net is given
// Example: expect unconnected 1 = 2
type ExpectCount struct {
	Net  *int `"unconnected" @Int?`
	Want int  `"=" @Int`
}

// ExpectPair asserts whether two items share copper
// Example: expect connected A B
type ExpectPair struct {
	Mode string `@( "connected" | "disconnected" )`
	A    string `@Ident`
	B    string `@Ident`
}

// Print writes the missing links or the statistics of one net or the
// whole board
// Example: print unconnected 1
type Print struct {
	What string `"print" @( "unconnected" | "stats" )`
	Net  *int   `@Int?`
}
