// Package precedence builds expressions for operator tables.
//
// Every level wraps the expression of the previous (tighter binding) level,
// binary levels are parsed as an operand followed by a list of operator-operand pairs
// and folded afterwards, so the resulting grammar is not left-recursive.
package precedence

import (
	"fmt"

	"github.com/ava12/sourcer/expr"
)

// Kind defines operator kind and associativity of a level.
type Kind int

const (
	LeftAssoc  Kind = iota // a op b op c == (a op b) op c
	RightAssoc             // a op b op c == a op (b op c)
	NonAssoc               // a op b, chains are not matched
	PrefixOp               // op op a
	PostfixOp              // a op op
)

func (k Kind) String() string {
	switch k {
	case LeftAssoc:
		return "left"
	case RightAssoc:
		return "right"
	case NonAssoc:
		return "nonassoc"
	case PrefixOp:
		return "prefix"
	case PostfixOp:
		return "postfix"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Level is a group of operators with the same precedence.
type Level struct {
	Kind Kind
	// Ops contains operator expressions, they are combined with ordered choice.
	Ops []any
}

// NewLevel creates operator level.
func NewLevel(kind Kind, ops ...any) Level {
	return Level{kind, ops}
}

// Infix is the value of a binary operation.
type Infix struct {
	Left, Op, Right any
}

// Prefix is the value of a prefix operation.
type Prefix struct {
	Op, Right any
}

// Postfix is the value of a postfix operation.
type Postfix struct {
	Left, Op any
}

// Build returns expression matching atoms combined with operators.
// Levels are listed from the tightest binding one. Values of operators are
// the values of their expressions, e.g. matched text or tokens.
// Panics on unknown level kind.
func Build(atom any, levels ...Level) expr.Expr {
	current := expr.From(atom)
	for _, l := range levels {
		op := expr.Or(l.Ops...)
		switch l.Kind {
		case LeftAssoc:
			current = expr.Transform(expr.Seq(current, expr.List(expr.Seq(op, current))), foldLeft)
		case RightAssoc:
			current = expr.Transform(expr.Seq(current, expr.List(expr.Seq(op, current))), foldRight)
		case NonAssoc:
			current = expr.Transform(expr.Seq(current, expr.Opt(expr.Seq(op, current))), foldNonAssoc)
		case PrefixOp:
			current = expr.Transform(expr.Seq(expr.List(op), current), foldPrefix)
		case PostfixOp:
			current = expr.Transform(expr.Seq(current, expr.List(op)), foldPostfix)
		default:
			panic("unknown operator kind " + l.Kind.String())
		}
	}
	return current
}

func pairs(v any) (first any, rest []any) {
	items := v.([]any)
	return items[0], items[1].([]any)
}

func foldLeft(v any) (any, error) {
	result, rest := pairs(v)
	for _, p := range rest {
		pair := p.([]any)
		result = &Infix{result, pair[0], pair[1]}
	}
	return result, nil
}

func foldRight(v any) (any, error) {
	first, rest := pairs(v)
	if len(rest) == 0 {
		return first, nil
	}

	last := rest[len(rest)-1].([]any)
	result := last[1]
	op := last[0]
	for i := len(rest) - 2; i >= 0; i-- {
		pair := rest[i].([]any)
		result = &Infix{pair[1], op, result}
		op = pair[0]
	}
	return &Infix{first, op, result}, nil
}

func foldNonAssoc(v any) (any, error) {
	items := v.([]any)
	if items[1] == nil {
		return items[0], nil
	}

	pair := items[1].([]any)
	return &Infix{items[0], pair[0], pair[1]}, nil
}

func foldPrefix(v any) (any, error) {
	items := v.([]any)
	ops := items[0].([]any)
	result := items[1]
	for i := len(ops) - 1; i >= 0; i-- {
		result = &Prefix{ops[i], result}
	}
	return result, nil
}

func foldPostfix(v any) (any, error) {
	items := v.([]any)
	result := items[0]
	for _, op := range items[1].([]any) {
		result = &Postfix{result, op}
	}
	return result, nil
}
