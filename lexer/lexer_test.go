package lexer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ava12/sourcer"
	"github.com/ava12/sourcer/expr"
	"github.com/ava12/sourcer/parser"
	"github.com/ava12/sourcer/source"
)

var testClasses = []Class{
	{Name: "space", Pattern: `\s+`, Skip: true},
	{Name: "number", Pattern: `\d+`},
	{Name: "name", Pattern: `[a-z_][a-z0-9_]*`},
	{Name: "string", Pattern: `'(?P<body>[^']*)'`},
	{Name: "op", Pattern: `[-+*/=()]`},
}

func testSyntax(t *testing.T) *Syntax {
	s, e := NewSyntax(testClasses...)
	if e != nil {
		t.Fatalf("unexpected error: %s", e)
	}
	return s
}

func texts(tokens []*Token) []string {
	result := make([]string, len(tokens))
	for i, t := range tokens {
		result[i] = t.Text()
	}
	return result
}

func TestSkip(t *testing.T) {
	s, e := NewSyntax(Class{"space", `\s+`, true}, Class{"word", `\w+`, false})
	if e != nil {
		t.Fatalf("unexpected error: %s", e)
	}

	tokens, e := s.Tokenize("a  b")
	if e != nil {
		t.Fatalf("unexpected error: %s", e)
	}
	if diff := cmp.Diff([]string{"a", "b"}, texts(tokens)); diff != "" {
		t.Errorf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestEmpty(t *testing.T) {
	s := testSyntax(t)
	for _, src := range []string{"", " ", " \t\r\n "} {
		tokens, e := s.Tokenize(src)
		if e != nil {
			t.Fatalf("source %q: unexpected error %s", src, e)
		}
		if len(tokens) != 0 {
			t.Fatalf("source %q: unexpected tokens %v", src, tokens)
		}
	}
}

func TestTokenSamples(t *testing.T) {
	type tokenSample struct {
		kind, text string
		line, col  int
	}

	s := testSyntax(t)
	tokens, e := s.TokenizeSource(source.New("sample", "x1 = 123\n  + 'foo'"))
	if e != nil {
		t.Fatalf("unexpected error: %s", e)
	}

	expected := []tokenSample{
		{"name", "x1", 1, 1},
		{"op", "=", 1, 4},
		{"number", "123", 1, 6},
		{"op", "+", 2, 3},
		{"string", "'foo'", 2, 5},
	}
	got := make([]tokenSample, len(tokens))
	for i, tok := range tokens {
		got[i] = tokenSample{tok.Kind(), tok.Text(), tok.Line(), tok.Col()}
		if tok.SourceName() != "sample" {
			t.Errorf("token #%d: expecting source name \"sample\", got %q", i, tok.SourceName())
		}
	}
	if diff := cmp.Diff(expected, got, cmp.AllowUnexported(tokenSample{})); diff != "" {
		t.Errorf("token mismatch (-want +got):\n%s", diff)
	}

	str := tokens[4]
	if str.Group("body") != "foo" || str.Offset() != 13 {
		t.Errorf("expecting group \"foo\" at offset 13, got %q at %d", str.Group("body"), str.Offset())
	}
	if tokens[0].Groups() != nil {
		t.Errorf("expecting no groups, got %v", tokens[0].Groups())
	}
}

func TestWrongChar(t *testing.T) {
	s := testSyntax(t)
	_, e := s.TokenizeSource(source.New("sample", "foo\n  #"))
	se, f := e.(*sourcer.Error)
	if !f || se.Code != WrongCharError {
		t.Fatalf("expecting WrongCharError, got %v", e)
	}
	if se.Line != 2 || se.Col != 3 || se.Offset != 6 {
		t.Fatalf("expecting error at line 2, col 3, got %d, %d", se.Line, se.Col)
	}
	if !strings.Contains(se.Message, "'#'") || !strings.Contains(se.Message, "sample") {
		t.Fatalf("unexpected message: %s", se.Message)
	}

	empty, _ := NewSyntax(Class{"opt", `a*`, false})
	_, e = empty.Tokenize("aab")
	if !sourcer.HasCode(e, WrongCharError) {
		t.Fatalf("expecting WrongCharError for an empty match, got %v", e)
	}
}

func TestSyntaxErrors(t *testing.T) {
	samples := []struct {
		classes []Class
		err     int
	}{
		{nil, NoClassesError},
		{[]Class{{Name: "", Pattern: "a"}}, EmptyClassNameError},
		{[]Class{{Name: "a", Pattern: "a"}, {Name: "a", Pattern: "b"}}, DuplicateClassError},
		{[]Class{{Name: "a", Pattern: "(a"}}, WrongPatternError},
	}

	for i, sample := range samples {
		_, e := NewSyntax(sample.classes...)
		if !sourcer.HasCode(e, sample.err) {
			t.Errorf("sample #%d: expecting error code %d, got %v", i, sample.err, e)
		}
	}
}

func TestTokenizeAndParse(t *testing.T) {
	s := testSyntax(t)
	assign := expr.Transform(expr.Seq(s.Kind("name"), "=", s.Kind("number")), func(v any) (any, error) {
		items := v.([]any)
		return items[0].(*Token).Text() + ":" + items[2].(*Token).Text(), nil
	})

	value, e := s.TokenizeAndParse(assign, "x = 42")
	if e != nil || value != "x:42" {
		t.Fatalf("expecting \"x:42\", got %#v (error %v)", value, e)
	}

	_, e = s.TokenizeAndParseSource(assign, source.New("sample", "x = y"))
	var se *sourcer.Error
	se, _ = e.(*sourcer.Error)
	if se == nil || se.Code != parser.NoMatchError {
		t.Fatalf("expecting no match error, got %v", e)
	}
	if se.Line != 1 || se.Col != 5 || se.SourceName != "sample" {
		t.Errorf("expecting error in sample at 1:5, got %s", se)
	}
}

func TestUnknownKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expecting panic")
		}
	}()

	testSyntax(t).Kind("nothing")
}
