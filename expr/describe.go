package expr

import (
	"fmt"
	"strings"
)

// Describe returns a short human-readable form of an expression for logs and messages.
// Forward references are not resolved.
func Describe(e Expr) string {
	var sb strings.Builder
	describe(&sb, e)
	return sb.String()
}

func describeList(sb *strings.Builder, sep string, es ...Expr) {
	for i, e := range es {
		if i > 0 {
			sb.WriteString(sep)
		}
		describe(sb, e)
	}
}

func describeCall(sb *strings.Builder, name string, es ...Expr) {
	sb.WriteString(name)
	sb.WriteByte('(')
	describeList(sb, ", ", es...)
	sb.WriteByte(')')
}

func describe(sb *strings.Builder, e Expr) {
	switch x := e.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *Literal:
		fmt.Fprintf(sb, "%#v", x.Value)
	case *Sequence:
		sb.WriteByte('(')
		describeList(sb, ", ", x.Items...)
		sb.WriteByte(')')
	case *Choice:
		sb.WriteByte('(')
		describeList(sb, " | ", x.Left, x.Right)
		sb.WriteByte(')')
	case *Repeat:
		describeCall(sb, "List", x.Elem)
	case *Optional:
		describeCall(sb, "Opt", x.Elem)
	case *OneOrMore:
		describeCall(sb, "Some", x.Elem)
	case *SeparatedList:
		describeCall(sb, "Sep", x.Elem, x.Sep)
	case *Lookahead:
		describeCall(sb, "And", x.Left, x.Right)
	case *Negation:
		describeCall(sb, "Not", x.Elem)
	case *Transformation:
		describeCall(sb, "Transform", x.Expr)
	case *Binding:
		describeCall(sb, "Bind", x.Expr)
	case *Requirement:
		describeCall(sb, "Require", x.Expr)
	case *Expectation:
		describeCall(sb, "Expect", x.Elem)
	case *Pick:
		if x.KeepRight {
			describeCall(sb, "Right", x.Left, x.Right)
		} else {
			describeCall(sb, "Left", x.Left, x.Right)
		}
	case *Constant:
		fmt.Fprintf(sb, "Return(%#v)", x.Value)
	case *Terminal:
		switch x.Kind {
		case FailTerminal:
			sb.WriteString("Fail")
		case StartTerminal:
			sb.WriteString("Start")
		case EndTerminal:
			sb.WriteString("End")
		case AnyTerminal:
			sb.WriteString("Any")
		}
	case *ForwardRef:
		fmt.Fprintf(sb, "Ref(%p)", x)
	case *Regexp:
		fmt.Fprintf(sb, "/%s/", x.Re)
	default:
		fmt.Fprintf(sb, "%T", e)
	}
}
