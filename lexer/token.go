package lexer

import (
	"fmt"

	"github.com/ava12/sourcer/source"
)

// Token is a lexeme of some class.
type Token struct {
	kind      string
	text      string
	groups    map[string]string
	source    *source.Source
	offset    int
	line, col int
}

// NewToken creates token located at sp, sp may be zero.
func NewToken(kind, text string, groups map[string]string, sp source.Pos) *Token {
	return &Token{kind, text, groups, sp.Source(), sp.Pos(), sp.Line(), sp.Col()}
}

// Kind returns token class name.
func (t *Token) Kind() string {
	return t.kind
}

func (t *Token) Text() string {
	return t.text
}

// Group returns the text captured by the named group of the class pattern or empty string.
func (t *Token) Group(name string) string {
	return t.groups[name]
}

// Groups returns all non-empty named groups, may be nil.
func (t *Token) Groups() map[string]string {
	return t.groups
}

func (t *Token) Source() *source.Source {
	return t.source
}

func (t *Token) SourceName() string {
	if t.source == nil {
		return ""
	} else {
		return t.source.Name()
	}
}

// Offset returns byte offset of the token in source text.
func (t *Token) Offset() int {
	return t.offset
}

func (t *Token) Line() int {
	return t.line
}

func (t *Token) Col() int {
	return t.col
}

func (t *Token) String() string {
	return fmt.Sprintf("%s %q at %d:%d", t.kind, t.text, t.line, t.col)
}
