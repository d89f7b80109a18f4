/*
Package langdef loads token syntax definitions from YAML documents.

A document lists token classes in order of precedence:

	tokens:
	  - {name: space, pattern: '\s+'}
	  - {name: word, pattern: '[a-z]+'}
	  - {name: comment, pattern: '#[^\n]*', skip: true}
	skip: [space]

Classes are skipped if either marked with "skip: true" or listed in the top level "skip" list.
*/
package langdef

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ava12/sourcer/lexer"
)

type tokenDef struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Skip    bool   `yaml:"skip"`
}

type document struct {
	Tokens []tokenDef `yaml:"tokens"`
	Skip   []string   `yaml:"skip"`
}

// ParseClasses parses a YAML document into token classes, name is used in error messages.
func ParseClasses(name string, data []byte) ([]lexer.Class, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if e := dec.Decode(&doc); e != nil {
		if errors.Is(e, io.EOF) {
			return nil, emptyDefinitionError(name)
		}
		return nil, syntaxError(name, e)
	}

	if len(doc.Tokens) == 0 {
		return nil, emptyDefinitionError(name)
	}

	classes := make([]lexer.Class, len(doc.Tokens))
	indexes := make(map[string]int, len(doc.Tokens))
	names := make([]string, len(doc.Tokens))
	for i, t := range doc.Tokens {
		classes[i] = lexer.Class{Name: t.Name, Pattern: t.Pattern, Skip: t.Skip}
		indexes[t.Name] = i
		names[i] = t.Name
	}

	for _, s := range doc.Skip {
		i, f := indexes[s]
		if !f {
			return nil, unknownTokenError(name, s, names)
		}
		classes[i].Skip = true
	}

	return classes, nil
}

// ParseSyntax parses a YAML document and creates token syntax, name is used in error messages.
func ParseSyntax(name string, data []byte) (*lexer.Syntax, error) {
	classes, e := ParseClasses(name, data)
	if e != nil {
		return nil, e
	}

	return lexer.NewSyntax(classes...)
}

// LoadClasses reads a YAML document from file and parses it into token classes.
func LoadClasses(path string) ([]lexer.Class, error) {
	data, e := os.ReadFile(path)
	if e != nil {
		return nil, e
	}

	return ParseClasses(filepath.Base(path), data)
}

// LoadSyntax reads a YAML document from file and creates token syntax.
func LoadSyntax(path string) (*lexer.Syntax, error) {
	classes, e := LoadClasses(path)
	if e != nil {
		return nil, e
	}

	return lexer.NewSyntax(classes...)
}
