package parser

import (
	"reflect"

	"github.com/ava12/sourcer/expr"
	"github.com/ava12/sourcer/source"
)

type memoKey struct {
	rule rule
	pos  int
}

// ParseContext holds the state of a single parse run.
type ParseContext struct {
	prog     *Program
	mode     Mode
	text     string
	src      *source.Source
	items    []any
	size     int
	memo     map[memoKey]result
	stack    *frameStack
	furthest int
	stats    Stats
}

func newParseContext(p *Program, src any) (*ParseContext, error) {
	pc := &ParseContext{
		prog:     p,
		mode:     p.mode,
		memo:     make(map[memoKey]result),
		stack:    newFrameStack(),
		furthest: -1,
	}
	pc.stats.Mode = p.mode

	if p.mode == TextMode {
		switch s := src.(type) {
		case string:
			pc.text = s
		case *source.Source:
			pc.src = s
			pc.text = s.Text()
		default:
			return nil, wrongSourceError(src, p.mode)
		}
		pc.size = len(pc.text)
		return pc, nil
	}

	items, ok := toItems(src)
	if !ok {
		return nil, wrongSourceError(src, p.mode)
	}
	pc.items = items
	pc.size = len(items)
	return pc, nil
}

func toItems(src any) ([]any, bool) {
	if items, f := src.([]any); f {
		return items, true
	}
	if src == nil {
		return nil, false
	}

	v := reflect.ValueOf(src)
	if v.Kind() != reflect.Slice {
		return nil, false
	}

	items := make([]any, v.Len())
	for i := range items {
		items[i] = v.Index(i).Interface()
	}
	return items, true
}

// Mode returns the mode of the running program.
func (pc *ParseContext) Mode() Mode {
	return pc.mode
}

// Size returns the length of the source in bytes or elements.
func (pc *ParseContext) Size() int {
	return pc.size
}

func (pc *ParseContext) failAt(pos int) {
	if pos > pc.furthest {
		pc.furthest = pos
	}
}

func (pc *ParseContext) textSource() *source.Source {
	if pc.src == nil {
		pc.src = source.New("", pc.text)
	}
	return pc.src
}

// run drives the root rule to completion. A call request is answered from the memo table
// if possible, otherwise the memo entry is seeded with failure and a new frame is pushed,
// so a rule that calls itself at the same position gets the failure.
func (pc *ParseContext) run() (result, error) {
	root := pc.prog.root
	pc.memo[memoKey{root, 0}] = result{}
	pc.push(root, 0)

	var got result
	for {
		f := pc.stack.Top()
		st, e := f.rule.resume(pc, f, got)
		pc.stats.Steps++
		if e != nil {
			return result{}, e
		}

		if st.call == nil {
			pc.memo[memoKey{f.rule, f.start}] = st.res
			if pc.prog.trace {
				pc.traceResult(f, st.res)
			}

			pc.stack.Drop()
			if pc.stack.IsEmpty() {
				return st.res, nil
			}

			got = st.res
			continue
		}

		key := memoKey{st.call, st.pos}
		if res, f := pc.memo[key]; f {
			pc.stats.MemoHits++
			got = res
			continue
		}

		pc.memo[key] = result{}
		pc.push(st.call, st.pos)
		got = result{}
	}
}

func (pc *ParseContext) push(r rule, pos int) {
	pc.stack.Push(r, pos)
	if pc.stack.Len() > pc.stats.MaxDepth {
		pc.stats.MaxDepth = pc.stack.Len()
	}
	if pc.prog.trace {
		pc.prog.log.Trace("call", "depth", pc.stack.Len(), "pos", pos, "rule", expr.Describe(r.source()))
	}
}

func (pc *ParseContext) traceResult(f *frame, res result) {
	log := pc.prog.log
	if res.ok {
		log.Trace("match", "depth", pc.stack.Len(), "pos", f.start, "end", res.pos, "rule", expr.Describe(f.rule.source()))
	} else {
		log.Trace("fail", "depth", pc.stack.Len(), "pos", f.start, "rule", expr.Describe(f.rule.source()))
	}
}

func (pc *ParseContext) observe(res result, err error) {
	if pc.prog.observer == nil {
		return
	}

	pc.stats.MemoEntries = len(pc.memo)
	pc.stats.Err = err
	if err == nil && res.ok {
		pc.stats.Consumed = res.pos
	}
	pc.prog.observer.ObserveParse(pc.stats)
}
