package parser

import (
	"reflect"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ava12/sourcer/expr"
)

// compilation is a single compiler pass. Rules compiled by earlier passes of the same program
// are looked up in shared and reused, rules created by this pass are stored in local only.
type compilation struct {
	prog   *Program
	shared map[expr.Expr]rule
	local  map[expr.Expr]rule
	refs   []*refRule
	rules  []rule
}

func newCompilation(p *Program) *compilation {
	return &compilation{
		prog:   p,
		shared: p.rules,
		local:  make(map[expr.Expr]rule),
	}
}

func isNilExpr(e expr.Expr) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func (c *compilation) lookup(e expr.Expr) (rule, bool) {
	if r, f := c.local[e]; f {
		return r, true
	}
	r, f := c.shared[e]
	return r, f
}

// register stores a rule for e before its children are compiled,
// so that a cycle leading back to e finds this rule instead of recursing.
func (c *compilation) register(e expr.Expr, r rule) {
	c.local[e] = r
	c.rules = append(c.rules, r)
}

// add stores an internal rule that has no expression of its own.
func (c *compilation) add(r rule) rule {
	c.rules = append(c.rules, r)
	return r
}

// run compiles e and patches placeholders in all created rules.
func (c *compilation) run(e expr.Expr) (rule, error) {
	root, err := c.compile(e)
	if err != nil {
		return nil, err
	}

	for _, r := range c.refs {
		r.target = resolveRef(r.target)
	}
	for _, r := range c.rules {
		r.rewrite(resolveRef)
	}
	for e, r := range c.local {
		c.local[e] = resolveRef(r)
	}
	return resolveRef(root), nil
}

// resolveRef follows a chain of placeholders to the first real rule.
// If the chain is a cycle, some placeholder of this cycle is returned.
func resolveRef(r rule) rule {
	var seen map[*refRule]bool
	for {
		ref, f := r.(*refRule)
		if !f || ref.target == nil {
			return r
		}

		if seen == nil {
			seen = make(map[*refRule]bool)
		}
		if seen[ref] {
			return ref
		}
		seen[ref] = true
		r = ref.target
	}
}

func (c *compilation) compileAll(es []expr.Expr) ([]rule, error) {
	result := make([]rule, len(es))
	for i, e := range es {
		r, err := c.compile(e)
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

func (c *compilation) compile(e expr.Expr) (rule, error) {
	if isNilExpr(e) {
		return nil, nilExprError("grammar")
	}
	if r, f := c.lookup(e); f {
		return r, nil
	}

	var err error
	switch x := e.(type) {
	case *expr.Literal:
		return c.compileLiteral(x)

	case *expr.Regexp:
		return c.compileRegexp(x), nil

	case *expr.Sequence:
		r := &sequenceRule{baseRule: baseRule{e}}
		c.register(e, r)
		r.items, err = c.compileAll(x.Items)
		return r, err

	case *expr.Choice:
		r := &choiceRule{baseRule: baseRule{e}}
		c.register(e, r)
		r.alts, err = c.compileAll(flattenChoice(x))
		return r, err

	case *expr.Repeat:
		r := &repeatRule{baseRule: baseRule{e}}
		c.register(e, r)
		r.elem, err = c.compile(x.Elem)
		return r, err

	case *expr.Optional:
		r := &choiceRule{baseRule: baseRule{e}}
		c.register(e, r)
		elem, err := c.compile(x.Elem)
		r.alts = []rule{elem, c.add(&constRule{baseRule{e}, nil})}
		return r, err

	case *expr.OneOrMore:
		rep := c.add(&repeatRule{baseRule: baseRule{e}})
		r := &requireRule{baseRule: baseRule{e}, elem: rep, pred: isNonEmptyList}
		c.register(e, r)
		rep.(*repeatRule).elem, err = c.compile(x.Elem)
		return r, err

	case *expr.SeparatedList:
		return c.compileSeparatedList(x)

	case *expr.Lookahead:
		r := &lookaheadRule{baseRule: baseRule{e}}
		c.register(e, r)
		if r.left, err = c.compile(x.Left); err == nil {
			r.right, err = c.compile(x.Right)
		}
		return r, err

	case *expr.Negation:
		r := &negationRule{baseRule: baseRule{e}}
		c.register(e, r)
		r.elem, err = c.compile(x.Elem)
		return r, err

	case *expr.Transformation:
		r := &transformRule{baseRule: baseRule{e}, fn: x.Fn}
		c.register(e, r)
		r.elem, err = c.compile(x.Expr)
		return r, err

	case *expr.Binding:
		cache, _ := lru.New[bindKey, rule](c.prog.bindCacheSize)
		r := &bindRule{baseRule: baseRule{e}, fn: x.Fn, cache: cache}
		c.register(e, r)
		r.elem, err = c.compile(x.Expr)
		return r, err

	case *expr.Requirement:
		r := &requireRule{baseRule: baseRule{e}, pred: x.Pred}
		c.register(e, r)
		r.elem, err = c.compile(x.Expr)
		return r, err

	case *expr.Expectation:
		r := &expectRule{baseRule: baseRule{e}}
		c.register(e, r)
		r.elem, err = c.compile(x.Elem)
		return r, err

	case *expr.Pick:
		r := &pickRule{baseRule: baseRule{e}, keepRight: x.KeepRight}
		c.register(e, r)
		if r.left, err = c.compile(x.Left); err == nil {
			r.right, err = c.compile(x.Right)
		}
		return r, err

	case *expr.Constant:
		r := &constRule{baseRule{e}, x.Value}
		c.register(e, r)
		return r, nil

	case *expr.Terminal:
		r := &terminalRule{baseRule{e}, x.Kind}
		c.register(e, r)
		return r, nil

	case *expr.ForwardRef:
		r := &refRule{baseRule: baseRule{e}}
		c.register(e, r)
		c.refs = append(c.refs, r)
		target := x.Target()
		if isNilExpr(target) {
			return nil, nilExprError("forward reference")
		}
		r.target, err = c.compile(target)
		return r, err
	}

	return nil, nilExprError(expr.Describe(e))
}

func (c *compilation) compileLiteral(x *expr.Literal) (rule, error) {
	if c.prog.mode == SeqMode {
		r := &seqLiteralRule{baseRule{x}, x.Value}
		c.register(x, r)
		return r, nil
	}

	var text string
	switch v := x.Value.(type) {
	case string:
		text = v
	case rune:
		text = string(v)
	default:
		return nil, wrongLiteralError(x.Value)
	}

	r := &textLiteralRule{baseRule{x}, text}
	c.register(x, r)
	return r, nil
}

func (c *compilation) compileRegexp(x *expr.Regexp) rule {
	var r rule
	if c.prog.mode == SeqMode {
		re := regexp.MustCompile(`^(?:` + x.Re.String() + `)$`)
		r = &seqRegexpRule{baseRule{x}, re}
	} else {
		re := regexp.MustCompile(`^(?:` + x.Re.String() + `)`)
		r = &textRegexpRule{baseRule{x}, re}
	}
	c.register(x, r)
	return r
}

// compileSeparatedList lowers Sep(e, sep, trailer) to Opt((e, List(Right(sep, e)), [Opt(sep)]))
// with the element values flattened into a single list.
func (c *compilation) compileSeparatedList(x *expr.SeparatedList) (rule, error) {
	seq := &sequenceRule{baseRule: baseRule{x}}
	flat := &transformRule{baseRule: baseRule{x}, elem: seq, fn: flattenSeparated}
	r := &choiceRule{baseRule: baseRule{x}}
	c.register(x, r)
	c.add(seq)
	c.add(flat)

	elem, err := c.compile(x.Elem)
	if err != nil {
		return nil, err
	}
	sep, err := c.compile(x.Sep)
	if err != nil {
		return nil, err
	}

	tail := c.add(&pickRule{baseRule: baseRule{x}, left: sep, right: elem, keepRight: true})
	seq.items = []rule{elem, c.add(&repeatRule{baseRule{x}, tail})}
	if x.Trailer {
		opt := c.add(&choiceRule{baseRule{x}, []rule{sep, c.add(&constRule{baseRule{x}, nil})}})
		seq.items = append(seq.items, opt)
	}

	r.alts = []rule{flat, c.add(&emptyListRule{baseRule{x}})}
	return r, nil
}

// emptyListRule succeeds with a new empty list.
type emptyListRule struct {
	baseRule
}

func (r *emptyListRule) resume(pc *ParseContext, f *frame, _ result) (step, error) {
	return success([]any{}, f.pos), nil
}

func flattenSeparated(v any) (any, error) {
	items := v.([]any)
	rest := items[1].([]any)
	result := make([]any, 0, len(rest)+1)
	result = append(result, items[0])
	return append(result, rest...), nil
}

func isNonEmptyList(v any) bool {
	return len(v.([]any)) > 0
}

// flattenChoice collects alternatives of a right-leaning chain of choices.
func flattenChoice(x *expr.Choice) []expr.Expr {
	var result []expr.Expr
	for {
		result = append(result, x.Left)
		next, f := x.Right.(*expr.Choice)
		if !f || next == nil {
			return append(result, x.Right)
		}
		x = next
	}
}
