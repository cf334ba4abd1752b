package script

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// scriptLexer tokenizes edit scripts. Keywords are plain identifiers
// matched by value in the grammar, so item names like "pad-1" or "R1-2"
// lex as one token.
var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments run from # to end of line
	{Name: "Comment", Pattern: `#[^\n]*`},

	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},

	// Coordinates are integer nanometres
	{Name: "Int", Pattern: `[-+]?[0-9]+`},

	// Identifiers: keywords and item names
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.+/\-]*`},

	{Name: "Punct", Pattern: `[()=]`},
})
