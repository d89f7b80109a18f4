package langdef

import (
	"slices"

	"github.com/ava12/sourcer"
	"github.com/ava12/sourcer/internal/levenshtein"
)

// Error codes used by langdef:
const (
	// SyntaxError indicates a document that is not valid YAML or does not have expected structure.
	SyntaxError = sourcer.LangDefErrors + iota

	// EmptyDefinitionError indicates a document with no token definitions.
	EmptyDefinitionError

	// UnknownTokenError indicates a reference to undefined token.
	UnknownTokenError
)

func syntaxError(name string, e error) *sourcer.Error {
	return sourcer.FormatError(SyntaxError, "%s: %s", name, e)
}

func emptyDefinitionError(name string) *sourcer.Error {
	return sourcer.FormatError(EmptyDefinitionError, "%s: no tokens defined", name)
}

func unknownTokenError(name, token string, known []string) *sourcer.Error {
	e := sourcer.FormatError(UnknownTokenError, "%s: unknown token %q in skip list", name, token)
	if hint := levenshtein.Suggest(token, slices.Values(known)); hint != "" {
		e.Message += ", " + hint
	}
	return e
}
