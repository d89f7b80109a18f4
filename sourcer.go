/*
Package sourcer is a parsing-expression library with a packrat interpreter.

Consists of subpackages:
  - expr: expression algebra used to describe grammars (literals, sequences, ordered choice,
    repetition, lookahead, transforms, bindings, forward references, regular expressions);
  - parser: compiles expressions into rule graphs and runs them over text or element sequences
    using an explicit-stack interpreter with memoization;
  - source: defines source text with line and column lookup;
  - lexer: tokenizer that turns text into tokens using the same machinery;
  - langdef: loads token syntax definitions from YAML;
  - precedence: builds operator-precedence expressions;
  - metrics: Prometheus observer for parse statistics;
  - cmd/sourcer: console utility tokenizing files.

Typical usage is:

1. Build a grammar from expr constructors. Recursive rules use expr.Ref.

2. Optionally describe tokens with lexer.NewSyntax or langdef and tokenize the input.

3. Call parser.Parse with the grammar and either a string or a token slice.

Left recursion is not supported: the first recursive attempt of a rule at the same
position fails. Express such rules with expr.List or the precedence package.
*/
package sourcer

import (
	"errors"
	"fmt"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	LangDefErrors = 1   // used by langdef
	LexicalErrors = 101 // used by lexer
	SyntaxErrors  = 201 // used by parser for inputs that do not match
	CompileErrors = 301 // used by parser for grammars that cannot be compiled
	EvalErrors    = 401 // used by applications, e.g. examples/calc
)

// Error is the error type used by sourcer subpackages.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source file or 0.
	Line int

	// Col contains column number in source file or 0.
	Col int

	// Offset contains byte offset in text or element index in a sequence, -1 if unknown.
	Offset int
}

// SourcePos is used to retrieve source name and position information when constructing an error;
// source.Pos and lexer.Token implement this interface.
type SourcePos interface {
	// SourceName returns source file name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// line and col will be added to error message if provided (non-zero), name is added if not empty.
func NewError(code int, msg, name string, line, col int) *Error {
	if line != 0 && col != 0 {
		if name == "" {
			msg += fmt.Sprintf(" at line %d col %d", line, col)
		} else {
			msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
		}
	}
	return &Error{code, msg, name, line, col, -1}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}

// HasCode reports whether e is or wraps an *Error with given code.
func HasCode(e error, code int) bool {
	var se *Error
	return errors.As(e, &se) && se.Code == code
}

// AsError returns *Error found in the chain of e.
func AsError(e error) (*Error, bool) {
	var se *Error
	if errors.As(e, &se) {
		return se, true
	}
	return nil, false
}
