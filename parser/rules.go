package parser

import (
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ava12/sourcer/expr"
)

// Texter is implemented by sequence elements that carry text, e.g. lexer tokens.
// String literals and regexps match the text of such elements in sequence mode.
type Texter interface {
	Text() string
}

type result struct {
	ok    bool
	value any
	pos   int
}

// step is either a request to run call at pos or, if call is nil, the final result of a frame.
type step struct {
	call rule
	pos  int
	res  result
}

func callStep(r rule, pos int) step {
	return step{call: r, pos: pos}
}

func doneStep(res result) step {
	return step{res: res}
}

func success(value any, pos int) step {
	return step{res: result{true, value, pos}}
}

func failure() step {
	return step{}
}

// rule is a compiled primitive parser. resume is called with got set to the zero result
// on the first entry (f.state == 0) and to the result of the last requested call afterwards.
type rule interface {
	resume(pc *ParseContext, f *frame, got result) (step, error)
	rewrite(func(rule) rule)
	source() expr.Expr
}

type baseRule struct {
	src expr.Expr
}

func (r *baseRule) source() expr.Expr {
	return r.src
}

func (r *baseRule) rewrite(func(rule) rule) {}

type textLiteralRule struct {
	baseRule
	text string
}

func (r *textLiteralRule) resume(pc *ParseContext, f *frame, _ result) (step, error) {
	if strings.HasPrefix(pc.text[f.pos:], r.text) {
		return success(r.text, f.pos+len(r.text)), nil
	}

	pc.failAt(f.pos)
	return failure(), nil
}

type seqLiteralRule struct {
	baseRule
	value any
}

func (r *seqLiteralRule) resume(pc *ParseContext, f *frame, _ result) (step, error) {
	if f.pos < len(pc.items) && matchesLiteral(pc.items[f.pos], r.value) {
		return success(pc.items[f.pos], f.pos+1), nil
	}

	pc.failAt(f.pos)
	return failure(), nil
}

func matchesLiteral(item, value any) bool {
	if s, f := value.(string); f {
		if t, f := item.(Texter); f {
			return t.Text() == s
		}
	}

	if reflect.TypeOf(item) != reflect.TypeOf(value) {
		return false
	}
	if item == nil {
		return true
	}
	if reflect.ValueOf(item).Comparable() {
		return item == value
	}
	return reflect.DeepEqual(item, value)
}

type textRegexpRule struct {
	baseRule
	re *regexp.Regexp
}

func (r *textRegexpRule) resume(pc *ParseContext, f *frame, _ result) (step, error) {
	loc := r.re.FindStringIndex(pc.text[f.pos:])
	if loc == nil {
		pc.failAt(f.pos)
		return failure(), nil
	}

	end := f.pos + loc[1]
	return success(pc.text[f.pos:end], end), nil
}

type seqRegexpRule struct {
	baseRule
	re *regexp.Regexp
}

func (r *seqRegexpRule) resume(pc *ParseContext, f *frame, _ result) (step, error) {
	if f.pos < len(pc.items) {
		item := pc.items[f.pos]
		var text string
		matchable := true
		switch x := item.(type) {
		case Texter:
			text = x.Text()
		case string:
			text = x
		default:
			matchable = false
		}
		if matchable && r.re.MatchString(text) {
			return success(item, f.pos+1), nil
		}
	}

	pc.failAt(f.pos)
	return failure(), nil
}

type sequenceRule struct {
	baseRule
	items []rule
}

func (r *sequenceRule) resume(pc *ParseContext, f *frame, got result) (step, error) {
	if f.state == 0 {
		f.state = 1
		f.values = make([]any, 0, len(r.items))
	} else {
		if !got.ok {
			return failure(), nil
		}

		f.values = append(f.values, got.value)
		f.pos = got.pos
	}

	if len(f.values) == len(r.items) {
		return success(f.values, f.pos), nil
	}
	return callStep(r.items[len(f.values)], f.pos), nil
}

func (r *sequenceRule) rewrite(fn func(rule) rule) {
	for i, item := range r.items {
		r.items[i] = fn(item)
	}
}

type choiceRule struct {
	baseRule
	alts []rule
}

func (r *choiceRule) resume(pc *ParseContext, f *frame, got result) (step, error) {
	if f.state > 0 && got.ok {
		return doneStep(got), nil
	}
	if f.state == len(r.alts) {
		return failure(), nil
	}

	f.state++
	return callStep(r.alts[f.state-1], f.start), nil
}

func (r *choiceRule) rewrite(fn func(rule) rule) {
	for i, alt := range r.alts {
		r.alts[i] = fn(alt)
	}
}

type repeatRule struct {
	baseRule
	elem rule
}

func (r *repeatRule) resume(pc *ParseContext, f *frame, got result) (step, error) {
	if f.state == 0 {
		f.state = 1
		f.values = []any{}
	} else {
		if !got.ok || got.pos == f.pos {
			return success(f.values, f.pos), nil
		}

		f.values = append(f.values, got.value)
		f.pos = got.pos
	}

	return callStep(r.elem, f.pos), nil
}

func (r *repeatRule) rewrite(fn func(rule) rule) {
	r.elem = fn(r.elem)
}

type negationRule struct {
	baseRule
	elem rule
}

func (r *negationRule) resume(pc *ParseContext, f *frame, got result) (step, error) {
	if f.state == 0 {
		f.state = 1
		return callStep(r.elem, f.pos), nil
	}

	if got.ok {
		return failure(), nil
	}
	return success(nil, f.start), nil
}

func (r *negationRule) rewrite(fn func(rule) rule) {
	r.elem = fn(r.elem)
}

type lookaheadRule struct {
	baseRule
	left, right rule
}

func (r *lookaheadRule) resume(pc *ParseContext, f *frame, got result) (step, error) {
	switch f.state {
	case 0:
		f.state = 1
		return callStep(r.left, f.pos), nil
	case 1:
		if !got.ok {
			return failure(), nil
		}

		f.state = 2
		f.value = got.value
		f.pos = got.pos
		return callStep(r.right, f.pos), nil
	default:
		if !got.ok {
			return failure(), nil
		}
		return success(f.value, f.pos), nil
	}
}

func (r *lookaheadRule) rewrite(fn func(rule) rule) {
	r.left = fn(r.left)
	r.right = fn(r.right)
}

type expectRule struct {
	baseRule
	elem rule
}

func (r *expectRule) resume(pc *ParseContext, f *frame, got result) (step, error) {
	if f.state == 0 {
		f.state = 1
		return callStep(r.elem, f.pos), nil
	}

	if !got.ok {
		return failure(), nil
	}
	return success(got.value, f.start), nil
}

func (r *expectRule) rewrite(fn func(rule) rule) {
	r.elem = fn(r.elem)
}

type transformRule struct {
	baseRule
	elem rule
	fn   expr.Func
}

func (r *transformRule) resume(pc *ParseContext, f *frame, got result) (step, error) {
	if f.state == 0 {
		f.state = 1
		return callStep(r.elem, f.pos), nil
	}

	if !got.ok {
		return failure(), nil
	}

	value, e := r.fn(got.value)
	if e != nil {
		return failure(), e
	}
	return success(value, got.pos), nil
}

func (r *transformRule) rewrite(fn func(rule) rule) {
	r.elem = fn(r.elem)
}

type requireRule struct {
	baseRule
	elem rule
	pred func(any) bool
}

func (r *requireRule) resume(pc *ParseContext, f *frame, got result) (step, error) {
	if f.state == 0 {
		f.state = 1
		return callStep(r.elem, f.pos), nil
	}

	if !got.ok {
		return failure(), nil
	}
	if r.pred(got.value) {
		return doneStep(got), nil
	}

	pc.failAt(f.start)
	return failure(), nil
}

func (r *requireRule) rewrite(fn func(rule) rule) {
	r.elem = fn(r.elem)
}

type pickRule struct {
	baseRule
	left, right rule
	keepRight   bool
}

func (r *pickRule) resume(pc *ParseContext, f *frame, got result) (step, error) {
	switch f.state {
	case 0:
		f.state = 1
		return callStep(r.left, f.pos), nil
	case 1:
		if !got.ok {
			return failure(), nil
		}

		f.state = 2
		f.value = got.value
		return callStep(r.right, got.pos), nil
	default:
		if !got.ok {
			return failure(), nil
		}
		if r.keepRight {
			return doneStep(got), nil
		}
		return success(f.value, got.pos), nil
	}
}

func (r *pickRule) rewrite(fn func(rule) rule) {
	r.left = fn(r.left)
	r.right = fn(r.right)
}

type constRule struct {
	baseRule
	value any
}

func (r *constRule) resume(pc *ParseContext, f *frame, _ result) (step, error) {
	return success(r.value, f.pos), nil
}

type terminalRule struct {
	baseRule
	kind expr.TerminalKind
}

func (r *terminalRule) resume(pc *ParseContext, f *frame, _ result) (step, error) {
	switch r.kind {
	case expr.StartTerminal:
		if f.pos == 0 {
			return success(nil, f.pos), nil
		}

	case expr.EndTerminal:
		if f.pos == pc.size {
			return success(nil, f.pos), nil
		}

	case expr.AnyTerminal:
		if f.pos < pc.size {
			if pc.mode == SeqMode {
				return success(pc.items[f.pos], f.pos+1), nil
			}

			_, size := utf8.DecodeRuneInString(pc.text[f.pos:])
			return success(pc.text[f.pos:f.pos+size], f.pos+size), nil
		}

	default:
		return failure(), nil
	}

	pc.failAt(f.pos)
	return failure(), nil
}

// refRule is a placeholder for a rule that is being compiled. Compiler replaces references
// to placeholders with their targets, only placeholders forming a cycle stay in the graph.
type refRule struct {
	baseRule
	target rule
}

func (r *refRule) resume(pc *ParseContext, f *frame, got result) (step, error) {
	if f.state == 0 {
		f.state = 1
		return callStep(r.target, f.pos), nil
	}

	return doneStep(got), nil
}

func (r *refRule) rewrite(fn func(rule) rule) {
	r.target = fn(r.target)
}

type bindRule struct {
	baseRule
	elem  rule
	fn    expr.Func
	cache *lru.Cache[bindKey, rule]
}

func (r *bindRule) resume(pc *ParseContext, f *frame, got result) (step, error) {
	switch f.state {
	case 0:
		f.state = 1
		return callStep(r.elem, f.pos), nil
	case 1:
		if !got.ok {
			return failure(), nil
		}

		next, e := pc.prog.bound(r, got.value)
		if e != nil {
			return failure(), e
		}

		f.state = 2
		return callStep(next, got.pos), nil
	default:
		return doneStep(got), nil
	}
}

func (r *bindRule) rewrite(fn func(rule) rule) {
	r.elem = fn(r.elem)
}
