// Package parser compiles expressions into rule graphs and runs them
// over text or element sequences.
package parser

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ava12/sourcer/expr"
	"github.com/ava12/sourcer/source"
)

// Mode defines the kind of source a program runs over.
type Mode int

const (
	// TextMode programs parse strings (or *source.Source), positions are byte offsets.
	TextMode Mode = iota
	// SeqMode programs parse slices, positions are element indexes.
	SeqMode
)

func (m Mode) String() string {
	switch m {
	case TextMode:
		return "text"
	case SeqMode:
		return "sequence"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ModeOf returns the mode suitable for src: text mode for strings and *source.Source,
// sequence mode for any slice. ok is false for other values.
func ModeOf(src any) (mode Mode, ok bool) {
	switch src.(type) {
	case string, *source.Source:
		return TextMode, true
	case []any:
		return SeqMode, true
	}

	if src != nil && reflect.TypeOf(src).Kind() == reflect.Slice {
		return SeqMode, true
	}
	return TextMode, false
}

// Stats describes a single parse run.
type Stats struct {
	Mode        Mode
	Steps       int   // number of rule resumptions
	MemoHits    int   // calls answered from the memo table
	MemoEntries int   // size of the memo table at the end of the run
	MaxDepth    int   // largest frame stack size
	Consumed    int   // end position of a successful match or 0
	Err         error // nil on success
}

// Observer receives statistics of every parse run by a program.
type Observer interface {
	ObserveParse(s Stats)
}

// DefaultBindCacheSize is the number of rules cached per Bind expression.
const DefaultBindCacheSize = 256

// Option configures a Compiler.
type Option func(c *Compiler)

// WithLogger sets the logger, default is a null logger.
func WithLogger(log hclog.Logger) Option {
	return func(c *Compiler) {
		c.log = log
	}
}

// WithTrace enables trace level logging of every rule call and result.
func WithTrace(on bool) Option {
	return func(c *Compiler) {
		c.trace = on
	}
}

// WithObserver sets the observer for all programs created by the compiler.
func WithObserver(o Observer) Option {
	return func(c *Compiler) {
		c.observer = o
	}
}

// WithCacheSize limits the number of cached programs, least recently used programs are evicted.
// By default programs are kept as long as the compiler is.
func WithCacheSize(size int) Option {
	return func(c *Compiler) {
		if size > 0 {
			c.cacheSize = size
		}
	}
}

// WithBindCacheSize sets the maximum number of rules cached per Bind expression.
func WithBindCacheSize(size int) Option {
	return func(c *Compiler) {
		if size > 0 {
			c.bindCacheSize = size
		}
	}
}

type cacheKey struct {
	e    expr.Expr
	mode Mode
}

type programCache interface {
	Get(key cacheKey) (*Program, bool)
	Add(key cacheKey, p *Program) bool
}

// programMap is an unbounded program cache, it is accessed under Compiler.mu only.
type programMap map[cacheKey]*Program

func (m programMap) Get(key cacheKey) (*Program, bool) {
	p, f := m[key]
	return p, f
}

func (m programMap) Add(key cacheKey, p *Program) bool {
	m[key] = p
	return false
}

// Compiler compiles expressions and caches resulting programs by expression identity and mode.
// Compiler is safe for concurrent use.
type Compiler struct {
	mu            sync.Mutex
	cache         programCache
	log           hclog.Logger
	trace         bool
	observer      Observer
	cacheSize     int
	bindCacheSize int
}

// New creates new compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		log:           hclog.NewNullLogger(),
		bindCacheSize: DefaultBindCacheSize,
	}
	for _, o := range opts {
		o(c)
	}

	if c.cacheSize > 0 {
		c.cache, _ = lru.New[cacheKey, *Program](c.cacheSize)
	} else {
		c.cache = make(programMap)
	}
	return c
}

var defaultCompiler = New()

// Compile returns the program for e in given mode. Expressions are cached by identity,
// other values are converted with expr.From and compiled anew on every call.
func (c *Compiler) Compile(e any, mode Mode) (*Program, error) {
	if e == nil {
		return nil, nilExprError("grammar")
	}

	x, cacheable := e.(expr.Expr)
	if !cacheable {
		x = expr.From(e)
	} else if isNilExpr(x) {
		return nil, nilExprError("grammar")
	}

	if !cacheable {
		return c.compile(x, mode)
	}

	key := cacheKey{x, mode}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, f := c.cache.Get(key); f {
		return p, nil
	}

	p, err := c.compile(x, mode)
	if err == nil {
		c.cache.Add(key, p)
	}
	return p, err
}

func (c *Compiler) compile(x expr.Expr, mode Mode) (*Program, error) {
	p := &Program{
		expr:          x,
		mode:          mode,
		rules:         make(map[expr.Expr]rule),
		log:           c.log,
		trace:         c.trace,
		observer:      c.observer,
		bindCacheSize: c.bindCacheSize,
	}

	cp := newCompilation(p)
	root, err := cp.run(x)
	if err != nil {
		c.log.Debug("compilation failed", "mode", mode, "error", err)
		return nil, err
	}

	p.root = root
	p.rules = cp.local
	c.log.Debug("compiled", "mode", mode, "rules", len(cp.rules))
	return p, nil
}

// Parse compiles e in the mode suitable for src and parses the whole src.
func (c *Compiler) Parse(e any, src any) (any, error) {
	p, err := c.compileFor(e, src)
	if err != nil {
		return nil, err
	}
	return p.Parse(src)
}

// ParsePrefix compiles e in the mode suitable for src and parses the longest prefix of src it matches.
func (c *Compiler) ParsePrefix(e any, src any) (any, int, error) {
	p, err := c.compileFor(e, src)
	if err != nil {
		return nil, 0, err
	}
	return p.ParsePrefix(src)
}

func (c *Compiler) compileFor(e any, src any) (*Program, error) {
	mode, ok := ModeOf(src)
	if !ok {
		return nil, wrongSourceError(src, mode)
	}
	return c.Compile(e, mode)
}

// Compile compiles e using the default compiler.
func Compile(e any, mode Mode) (*Program, error) {
	return defaultCompiler.Compile(e, mode)
}

// Parse parses the whole src using the default compiler.
// src is either a string (text mode) or a slice (sequence mode).
func Parse(e any, src any) (any, error) {
	return defaultCompiler.Parse(e, src)
}

// ParsePrefix parses the longest prefix of src using the default compiler
// and returns the value and the end position of the match.
func ParsePrefix(e any, src any) (any, int, error) {
	return defaultCompiler.ParsePrefix(e, src)
}

// Program is a compiled expression. Program is safe for concurrent use.
type Program struct {
	expr          expr.Expr
	mode          Mode
	root          rule
	rules         map[expr.Expr]rule
	log           hclog.Logger
	trace         bool
	observer      Observer
	bindCacheSize int
}

// Mode returns the mode the program was compiled for.
func (p *Program) Mode() Mode {
	return p.mode
}

// Expr returns the compiled expression.
func (p *Program) Expr() expr.Expr {
	return p.expr
}

// Parse matches the whole src. Returns NoMatchError if the expression does not match
// and UnconsumedInputError if it matches a proper prefix only.
// Errors returned by transform and bind functions are returned as is.
func (p *Program) Parse(src any) (any, error) {
	pc, err := newParseContext(p, src)
	if err != nil {
		return nil, err
	}

	res, err := pc.run()
	if err == nil {
		if !res.ok {
			err = pc.noMatchError()
		} else if res.pos != pc.size {
			err = pc.unconsumedInputError(res.pos)
		}
	}
	pc.observe(res, err)

	if err != nil {
		return nil, err
	}
	return res.value, nil
}

// ParsePrefix matches a prefix of src and returns its value and end position.
func (p *Program) ParsePrefix(src any) (value any, end int, err error) {
	pc, err := newParseContext(p, src)
	if err != nil {
		return nil, 0, err
	}

	res, err := pc.run()
	if err == nil && !res.ok {
		err = pc.noMatchError()
	}
	pc.observe(res, err)

	if err != nil {
		return nil, 0, err
	}
	return res.value, res.pos, nil
}

type bindKey struct {
	value  any
	hash   uint64
	hashed bool
}

func makeBindKey(v any) bindKey {
	if v == nil || reflect.ValueOf(v).Comparable() {
		return bindKey{value: v}
	}

	return bindKey{hash: xxhash.Sum64String(fmt.Sprintf("%T %#v", v, v)), hashed: true}
}

// bound returns the rule for the expression created by r's function from value.
// Rules are compiled on demand and cached by value, new rules are not added to the program.
func (p *Program) bound(r *bindRule, value any) (rule, error) {
	key := makeBindKey(value)
	if next, f := r.cache.Get(key); f {
		return next, nil
	}

	v, err := r.fn(value)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nilExprError("bind result")
	}

	x := expr.From(v)
	if isNilExpr(x) {
		return nil, nilExprError("bind result")
	}

	next, err := newCompilation(p).run(x)
	if err != nil {
		return nil, err
	}

	if p.trace {
		p.log.Trace("bound", "value", value, "expr", expr.Describe(x))
	}
	r.cache.Add(key, next)
	return next, nil
}
