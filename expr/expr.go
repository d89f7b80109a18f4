// Package expr defines parsing expressions, the building blocks of grammars.
//
// Expressions are immutable values created by constructor functions. They contain no parsing
// logic, package parser compiles them into executable rules. Each expression is a pointer and
// its identity is the key of compiled rule caches, so a grammar should be built once and reused.
//
// Constructors taking arguments of type any convert them with From: an Expr is used as is,
// a *regexp.Regexp becomes a Regexp expression and any other value becomes a Literal.
package expr

import (
	"regexp"
	"sync"
)

// Expr is a parsing expression. The set of implementations is closed.
type Expr interface {
	isExpr()
}

// Func is a user function applied to a parsed value by Transform and Bind.
// A non-nil error aborts parsing and is returned to the caller as is.
type Func = func(value any) (any, error)

// Literal matches one element equal to Value. In text mode Value must be a string or a rune
// and matches as a substring.
type Literal struct {
	Value any
}

// Sequence matches Items one after another. Its value is a []any of item values.
type Sequence struct {
	Items []Expr
}

// Choice tries Left and falls back to Right at the same position if Left fails.
type Choice struct {
	Left, Right Expr
}

// Repeat matches Elem zero or more times. Its value is a []any, never nil.
type Repeat struct {
	Elem Expr
}

// Optional matches Elem or nothing, in the latter case its value is nil.
type Optional struct {
	Elem Expr
}

// OneOrMore is a Repeat that requires at least one match.
type OneOrMore struct {
	Elem Expr
}

// SeparatedList matches zero or more Elem values separated by Sep.
// If Trailer is set a separator may follow the last element.
// Its value is a []any of element values.
type SeparatedList struct {
	Elem, Sep Expr
	Trailer   bool
}

// Lookahead matches Left only if Right matches right after it. Its value is the value of Left,
// the input matched by Right is not consumed.
type Lookahead struct {
	Left, Right Expr
}

// Negation succeeds without consuming input if Elem fails. Its value is nil.
type Negation struct {
	Elem Expr
}

// Transformation applies Fn to the value of Expr.
type Transformation struct {
	Expr Expr
	Fn   Func
}

// Binding calls Fn with the value of Expr and continues parsing with the expression it returns.
type Binding struct {
	Expr Expr
	Fn   Func
}

// Requirement matches Expr only if Pred returns true for its value.
type Requirement struct {
	Expr Expr
	Pred func(value any) bool
}

// Expectation matches Elem without consuming input. Its value is the value of Elem.
type Expectation struct {
	Elem Expr
}

// Pick matches Left then Right and keeps the value of one of them.
type Pick struct {
	Left, Right Expr
	KeepRight   bool
}

// Constant always succeeds with Value without consuming input.
type Constant struct {
	Value any
}

// TerminalKind selects the behavior of a Terminal.
type TerminalKind int

const (
	FailTerminal TerminalKind = iota
	StartTerminal
	EndTerminal
	AnyTerminal
)

// Terminal is one of predefined input-independent expressions.
type Terminal struct {
	Kind TerminalKind
}

// ForwardRef stands for an expression that is not defined yet. The resolver is called
// when the reference is compiled for the first time and again only if it panicked.
type ForwardRef struct {
	resolve  func() any
	mu       sync.Mutex
	resolved bool
	target   Expr
}

// Regexp matches text starting at current position in text mode
// or the whole text of current element in sequence mode.
//
// In text mode the pattern sees the remaining text only: ^, \A and \b
// treat current position as the start of input, so Seq("b", Pattern("^a"))
// matches "ba". Use Start or a Negation of the preceding context to anchor
// at the real start of input.
type Regexp struct {
	Re *regexp.Regexp
}

func (*Literal) isExpr()        {}
func (*Sequence) isExpr()       {}
func (*Choice) isExpr()         {}
func (*Repeat) isExpr()         {}
func (*Optional) isExpr()       {}
func (*OneOrMore) isExpr()      {}
func (*SeparatedList) isExpr()  {}
func (*Lookahead) isExpr()      {}
func (*Negation) isExpr()       {}
func (*Transformation) isExpr() {}
func (*Binding) isExpr()        {}
func (*Requirement) isExpr()    {}
func (*Expectation) isExpr()    {}
func (*Pick) isExpr()           {}
func (*Constant) isExpr()       {}
func (*Terminal) isExpr()       {}
func (*ForwardRef) isExpr()     {}
func (*Regexp) isExpr()         {}

// Predefined terminals.
var (
	// Fail never matches.
	Fail = &Terminal{FailTerminal}
	// Start matches empty input at position 0 only.
	Start = &Terminal{StartTerminal}
	// End matches empty input at the end of source only.
	End = &Terminal{EndTerminal}
	// Any matches any single element; in text mode it matches one rune and returns it as a string.
	Any = &Terminal{AnyTerminal}
)

// From converts a value to an expression.
func From(v any) Expr {
	switch x := v.(type) {
	case Expr:
		return x
	case *regexp.Regexp:
		return &Regexp{x}
	default:
		return &Literal{v}
	}
}

func fromAll(vs []any) []Expr {
	result := make([]Expr, len(vs))
	for i, v := range vs {
		result[i] = From(v)
	}
	return result
}

// Lit creates a Literal.
func Lit(v any) *Literal {
	return &Literal{v}
}

// Seq creates a Sequence.
func Seq(items ...any) *Sequence {
	return &Sequence{fromAll(items)}
}

// Or creates an ordered choice. With no alternatives it returns Fail,
// more than two alternatives are chained to the right.
func Or(alts ...any) Expr {
	switch len(alts) {
	case 0:
		return Fail
	case 1:
		return From(alts[0])
	}
	return &Choice{From(alts[0]), Or(alts[1:]...)}
}

// List creates a Repeat.
func List(e any) *Repeat {
	return &Repeat{From(e)}
}

// Opt creates an Optional.
func Opt(e any) *Optional {
	return &Optional{From(e)}
}

// Some creates a OneOrMore.
func Some(e any) *OneOrMore {
	return &OneOrMore{From(e)}
}

// Sep creates a SeparatedList.
func Sep(e, sep any, trailer bool) *SeparatedList {
	return &SeparatedList{From(e), From(sep), trailer}
}

// And creates a Lookahead.
func And(left, right any) *Lookahead {
	return &Lookahead{From(left), From(right)}
}

// Not creates a Negation.
func Not(e any) *Negation {
	return &Negation{From(e)}
}

// Transform creates a Transformation.
func Transform(e any, fn Func) *Transformation {
	return &Transformation{From(e), fn}
}

// Bind creates a Binding. fn must return a value convertible by From.
func Bind(e any, fn Func) *Binding {
	return &Binding{From(e), fn}
}

// Require creates a Requirement.
func Require(e any, pred func(any) bool) *Requirement {
	return &Requirement{From(e), pred}
}

// Where matches any single element satisfying pred.
func Where(pred func(any) bool) *Requirement {
	return &Requirement{Any, pred}
}

// Expect creates an Expectation.
func Expect(e any) *Expectation {
	return &Expectation{From(e)}
}

// Left matches a then b and keeps the value of a.
func Left(a, b any) *Pick {
	return &Pick{From(a), From(b), false}
}

// Right matches a then b and keeps the value of b.
func Right(a, b any) *Pick {
	return &Pick{From(a), From(b), true}
}

// Return creates a Constant.
func Return(v any) *Constant {
	return &Constant{v}
}

// Ref creates a ForwardRef. resolve must return a value convertible by From.
func Ref(resolve func() any) *ForwardRef {
	return &ForwardRef{resolve: resolve}
}

// Target resolves the reference. Resolver panics are not recovered,
// a reference whose resolver panicked stays unresolved.
func (r *ForwardRef) Target() Expr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.resolved {
		r.target = From(r.resolve())
		r.resolved = true
	}
	return r.target
}

// Pattern creates a Regexp expression, panics if pattern is invalid.
func Pattern(pattern string) *Regexp {
	return &Regexp{regexp.MustCompile(pattern)}
}

// Re creates a Regexp expression from compiled regexp.
func Re(re *regexp.Regexp) *Regexp {
	return &Regexp{re}
}
