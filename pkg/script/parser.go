// Package script parses and replays ratsnest edit scripts: a line
// oriented language that places copper items, edits them and asserts the
// resulting missing connections.
package script

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
)

// Parser represents an edit script parser
type Parser struct {
	parser *participle.Parser[Program]
}

// NewParser creates a new script parser instance
func NewParser() (*Parser, error) {
	parser, err := participle.Build[Program](
		participle.Lexer(scriptLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

// Parse parses a script from a reader. name is used in error positions.
func (p *Parser) Parse(name string, r io.Reader) (*Program, error) {
	prog, err := p.parser.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return prog, nil
}

// ParseString parses a script from a string
func (p *Parser) ParseString(input string) (*Program, error) {
	prog, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return prog, nil
}

// ParseFile parses a script file
func (p *Parser) ParseFile(filename string) (*Program, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(filename, file)
}
