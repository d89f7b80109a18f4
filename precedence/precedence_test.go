package precedence

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/ava12/sourcer/expr"
	"github.com/ava12/sourcer/internal/test"
	"github.com/ava12/sourcer/parser"
)

func render(v any) string {
	switch x := v.(type) {
	case *Infix:
		return fmt.Sprintf("(%s %v %s)", render(x.Left), x.Op, render(x.Right))
	case *Prefix:
		return fmt.Sprintf("(%v %s)", x.Op, render(x.Right))
	case *Postfix:
		return fmt.Sprintf("(%s %v)", render(x.Left), x.Op)
	default:
		return fmt.Sprint(v)
	}
}

var number = expr.Transform(expr.Pattern(`\d+`), func(v any) (any, error) {
	n, e := strconv.Atoi(v.(string))
	return n, e
})

var arithmetic = Build(
	number,
	NewLevel(PostfixOp, "!"),
	NewLevel(RightAssoc, "^"),
	NewLevel(PrefixOp, "-"),
	NewLevel(LeftAssoc, "*", "/"),
	NewLevel(LeftAssoc, "+", "-"),
	NewLevel(NonAssoc, "<", "="),
)

func TestBuild(t *testing.T) {
	samples := []struct {
		src, expected string
	}{
		{"1", "1"},
		{"1-2-3", "((1 - 2) - 3)"},
		{"2^3^4", "(2 ^ (3 ^ 4))"},
		{"1+2*3", "(1 + (2 * 3))"},
		{"-2^2", "(- (2 ^ 2))"},
		{"--1", "(- (- 1))"},
		{"1--2", "(1 - (- 2))"},
		{"3!!", "((3 !) !)"},
		{"1+2<3*4", "((1 + 2) < (3 * 4))"},
		{"2*3!/4", "((2 * (3 !)) / 4)"},
	}

	for i, sample := range samples {
		v, e := parser.Parse(arithmetic, sample.src)
		if e != nil {
			t.Errorf("sample #%d %q: unexpected error: %s", i, sample.src, e)
			continue
		}
		if got := render(v); got != sample.expected {
			t.Errorf("sample #%d %q: expecting %s, got %s", i, sample.src, sample.expected, got)
		}
	}
}

func TestNonAssocChain(t *testing.T) {
	_, e := parser.Parse(arithmetic, "1<2<3")
	se := test.ExpectErrorCode(t, parser.UnconsumedInputError, e)
	test.ExpectInt(t, 3, se.Offset)
}

func TestValues(t *testing.T) {
	v, e := parser.Parse(arithmetic, "1+2")
	test.Assert(t, e == nil, "unexpected error: %v", e)
	infix, f := v.(*Infix)
	test.Assert(t, f, "expecting *Infix, got %T", v)
	test.Expect(t, infix.Left == 1 && infix.Right == 2, "1 + 2", render(infix))
	test.Expect(t, infix.Op == "+", "+", infix.Op)

	v, e = parser.Parse(arithmetic, "-3!")
	test.Assert(t, e == nil, "unexpected error: %v", e)
	prefix, f := v.(*Prefix)
	test.Assert(t, f, "expecting *Prefix, got %T", v)
	_, f = prefix.Right.(*Postfix)
	test.Assert(t, f, "expecting postfix operand, got %T", prefix.Right)
}

func TestUnknownKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expecting panic")
		}
	}()

	Build(number, NewLevel(Kind(42), "+"))
}
