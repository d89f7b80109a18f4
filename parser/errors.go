package parser

import (
	"reflect"

	"github.com/ava12/sourcer"
)

// Error codes used by parser:
const (
	// NoMatchError indicates that the grammar does not match the source at all.
	NoMatchError = sourcer.SyntaxErrors + iota

	// UnconsumedInputError indicates that the grammar matches a proper prefix of the source only.
	UnconsumedInputError
)

const (
	// NilExprError indicates a nil expression, e.g. returned by a Bind function or a forward reference.
	NilExprError = sourcer.CompileErrors + iota

	// WrongLiteralError indicates a literal that cannot be matched against text.
	WrongLiteralError

	// WrongSourceError indicates a source of unsupported type.
	WrongSourceError
)

// IsParseError reports whether e is an error returned for a source that does not match a grammar.
func IsParseError(e error) bool {
	return sourcer.HasCode(e, NoMatchError) || sourcer.HasCode(e, UnconsumedInputError)
}

func nilExprError(where string) *sourcer.Error {
	return sourcer.FormatError(NilExprError, "nil expression in %s", where)
}

func wrongLiteralError(value any) *sourcer.Error {
	return sourcer.FormatError(WrongLiteralError, "cannot match %T literal %#v against text", value, value)
}

func wrongSourceError(src any, mode Mode) *sourcer.Error {
	return sourcer.FormatError(WrongSourceError, "cannot parse %s in %s mode", reflect.TypeOf(src), mode)
}

// positionError creates an error located at offset: text sources get line and column numbers,
// sequences get them from the element at offset if it implements sourcer.SourcePos.
func (pc *ParseContext) positionError(code int, msg string, offset int) *sourcer.Error {
	var e *sourcer.Error
	switch {
	case pc.mode == TextMode:
		line, col := pc.textSource().LineCol(offset)
		e = sourcer.NewError(code, msg, "", line, col)
	case offset < len(pc.items):
		if sp, f := pc.items[offset].(sourcer.SourcePos); f {
			e = sourcer.FormatErrorPos(sp, code, msg)
		} else {
			e = sourcer.FormatError(code, "%s at element #%d", msg, offset)
		}
	default:
		e = sourcer.FormatError(code, "%s at end of input", msg)
	}
	e.Offset = offset
	return e
}

func (pc *ParseContext) noMatchError() *sourcer.Error {
	return pc.positionError(NoMatchError, "no match", max(pc.furthest, 0))
}

func (pc *ParseContext) unconsumedInputError(end int) *sourcer.Error {
	return pc.positionError(UnconsumedInputError, "unexpected input", max(end, pc.furthest))
}
