// Package lexer defines tokenizer built on parser expressions.
package lexer

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/ava12/sourcer"
	"github.com/ava12/sourcer/expr"
	"github.com/ava12/sourcer/parser"
	"github.com/ava12/sourcer/source"
)

// Error codes used by lexer:
const (
	// WrongCharError indicates that no token class matches at current position.
	// Error message contains the rune at current source position.
	WrongCharError = sourcer.LexicalErrors + iota

	// EmptyClassNameError indicates a token class with empty name.
	EmptyClassNameError

	// DuplicateClassError indicates two token classes with the same name.
	DuplicateClassError

	// WrongPatternError indicates a token class pattern that is not a valid regular expression.
	WrongPatternError

	// NoClassesError indicates a syntax with no token classes.
	NoClassesError
)

func wrongCharError(s *source.Source, pos int) *sourcer.Error {
	r, _ := utf8.DecodeRuneInString(s.Text()[pos:])
	line, col := s.LineCol(pos)
	msg := fmt.Sprintf("wrong char %q (u+%x)", r, r)
	e := sourcer.NewError(WrongCharError, msg, s.Name(), line, col)
	e.Offset = pos
	return e
}

func emptyClassNameError(index int) *sourcer.Error {
	return sourcer.FormatError(EmptyClassNameError, "empty name of token class #%d", index)
}

func duplicateClassError(name string) *sourcer.Error {
	return sourcer.FormatError(DuplicateClassError, "duplicate token class %q", name)
}

func wrongPatternError(name string, e error) *sourcer.Error {
	return sourcer.FormatError(WrongPatternError, "wrong pattern of token class %q: %s", name, e)
}

func noClassesError() *sourcer.Error {
	return sourcer.FormatError(NoClassesError, "no token classes defined")
}

// Class describes a kind of tokens.
type Class struct {
	// Name contains class name, it is used as token kind.
	Name string

	// Pattern contains regular expression matching tokens of this class. Named groups are copied to tokens.
	Pattern string

	// Skip marks insignificant lexemes (e.g. whitespace or comments), they are not returned by tokenizer.
	Skip bool
}

// Syntax is an ordered set of token classes. At each position the first matching class wins.
// Syntax is immutable and safe for concurrent use.
type Syntax struct {
	classes  []Class
	compiler *parser.Compiler
	prog     *parser.Program
	kinds    map[string]expr.Expr
}

// lexeme is a token before its position is known.
type lexeme struct {
	class  int
	text   string
	groups map[string]string
}

// NewSyntax creates syntax from classes listed in order of precedence.
func NewSyntax(classes ...Class) (*Syntax, error) {
	return NewSyntaxWith(nil, classes...)
}

// NewSyntaxWith creates syntax using compiler c for tokenizing and parsing.
// Default parser compiler is used if c is nil.
func NewSyntaxWith(c *parser.Compiler, classes ...Class) (*Syntax, error) {
	if len(classes) == 0 {
		return nil, noClassesError()
	}

	alts := make([]any, len(classes))
	kinds := make(map[string]expr.Expr, len(classes))
	for i, cl := range classes {
		if cl.Name == "" {
			return nil, emptyClassNameError(i)
		}
		if kinds[cl.Name] != nil {
			return nil, duplicateClassError(cl.Name)
		}

		re, e := regexp.Compile(cl.Pattern)
		if e != nil {
			return nil, wrongPatternError(cl.Name, e)
		}

		alts[i] = expr.Transform(expr.Re(re), lexemeMaker(i, re))
		kinds[cl.Name] = kindExpr(cl.Name)
	}

	var (
		prog *parser.Program
		e    error
	)
	if c == nil {
		prog, e = parser.Compile(expr.Or(alts...), parser.TextMode)
	} else {
		prog, e = c.Compile(expr.Or(alts...), parser.TextMode)
	}
	if e != nil {
		return nil, e
	}

	return &Syntax{append([]Class(nil), classes...), c, prog, kinds}, nil
}

func lexemeMaker(class int, re *regexp.Regexp) expr.Func {
	names := re.SubexpNames()
	hasNames := false
	for _, n := range names {
		hasNames = hasNames || n != ""
	}
	full := regexp.MustCompile(`^(?:` + re.String() + `)$`)

	return func(v any) (any, error) {
		text := v.(string)
		l := &lexeme{class: class, text: text}
		if !hasNames {
			return l, nil
		}

		match := full.FindStringSubmatch(text)
		for i, n := range names {
			if n != "" && i < len(match) && match[i] != "" {
				if l.groups == nil {
					l.groups = make(map[string]string)
				}
				l.groups[n] = match[i]
			}
		}
		return l, nil
	}
}

func kindExpr(name string) expr.Expr {
	return expr.Where(func(v any) bool {
		t, f := v.(*Token)
		return f && t.kind == name
	})
}

// Classes returns token classes in order of precedence.
func (s *Syntax) Classes() []Class {
	return append([]Class(nil), s.classes...)
}

// Kind returns sequence mode expression matching a single token of named class.
// Panics if there is no such class.
func (s *Syntax) Kind(name string) expr.Expr {
	k, f := s.kinds[name]
	if !f {
		panic(fmt.Sprintf("unknown token class %q", name))
	}
	return k
}

// Tokenize splits src into tokens. Lexemes of skipped classes are dropped.
func (s *Syntax) Tokenize(src string) ([]*Token, error) {
	return s.TokenizeSource(source.New("", src))
}

// TokenizeSource splits source text into tokens. Lexemes of skipped classes are dropped.
// Returns WrongCharError if no class matches at some position or the match is empty.
func (s *Syntax) TokenizeSource(src *source.Source) ([]*Token, error) {
	text := src.Text()
	tokens := make([]*Token, 0)
	pos := 0
	for pos < len(text) {
		v, n, e := s.prog.ParsePrefix(text[pos:])
		if e != nil {
			if parser.IsParseError(e) {
				return nil, wrongCharError(src, pos)
			}
			return nil, e
		}
		if n == 0 {
			return nil, wrongCharError(src, pos)
		}

		l := v.(*lexeme)
		if !s.classes[l.class].Skip {
			tokens = append(tokens, NewToken(s.classes[l.class].Name, l.text, l.groups, source.NewPos(src, pos)))
		}
		pos += n
	}

	return tokens, nil
}

// Items converts tokens to a sequence mode source.
func Items(tokens []*Token) []any {
	items := make([]any, len(tokens))
	for i, t := range tokens {
		items[i] = t
	}
	return items
}

// TokenizeAndParse tokenizes src and parses the tokens with e in sequence mode.
func (s *Syntax) TokenizeAndParse(e any, src string) (any, error) {
	return s.TokenizeAndParseSource(e, source.New("", src))
}

// TokenizeAndParseSource tokenizes src and parses the tokens with e in sequence mode.
func (s *Syntax) TokenizeAndParseSource(e any, src *source.Source) (any, error) {
	tokens, err := s.TokenizeSource(src)
	if err != nil {
		return nil, err
	}

	if s.compiler == nil {
		return parser.Parse(e, Items(tokens))
	}
	return s.compiler.Parse(e, Items(tokens))
}
