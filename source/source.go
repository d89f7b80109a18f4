// Package source defines named source text with line and column lookup.
package source

import (
	"strings"
	"unicode/utf8"
)

// Source contains source name and text.
// Line lookups cache the last line found, so a Source must not be shared between goroutines
// while positions are being computed.
type Source struct {
	name          string
	text          string
	lineStarts    []int
	prevLineIndex int
}

// New creates new source.
func New(name, text string) *Source {
	s := &Source{name: name, text: text, prevLineIndex: -1}
	lineCnt := strings.Count(text, "\n") + 1
	s.lineStarts = make([]int, lineCnt)
	j := 1
	for i := 0; i < len(text) && j < lineCnt; i++ {
		if text[i] == '\n' {
			s.lineStarts[j] = i + 1
			j++
		}
	}

	return s
}

// Name returns source name.
func (s *Source) Name() string {
	return s.name
}

// Text returns source text.
func (s *Source) Text() string {
	return s.text
}

// Len returns source length in bytes.
func (s *Source) Len() int {
	return len(s.text)
}

// LineCol returns line and column numbers (both start with 1) for byte offset pos.
// Column is counted in runes. Offsets out of range are clamped.
func (s *Source) LineCol(pos int) (line, col int) {
	var lineIndex int
	if pos < 0 {
		pos = 0
		lineIndex = 0
	} else if pos >= len(s.text) {
		pos = len(s.text)
		lineIndex = len(s.lineStarts) - 1
	} else {
		lineIndex = s.findLineIndex(pos)
	}

	lineStart := s.lineStarts[lineIndex]
	return lineIndex + 1, utf8.RuneCountInString(s.text[lineStart:pos]) + 1
}

// Pos returns byte offset for given line and column (both start with 1).
// Column is counted in bytes. Returns 0 for non-positive line or column
// and source length for positions beyond the end.
func (s *Source) Pos(line, col int) int {
	if line <= 0 || col <= 0 {
		return 0
	}

	l := len(s.text)
	if line > len(s.lineStarts) {
		return l
	}

	res := s.lineStarts[line-1] + col - 1
	if res > l {
		return l
	}
	return res
}

func (s *Source) findLineIndex(pos int) int {
	if s.prevLineIndex >= 0 && s.lineStarts[s.prevLineIndex] <= pos {
		lineIndex := s.prevLineIndex
		last := len(s.lineStarts) - 1
		for lineIndex <= last && s.lineStarts[lineIndex] <= pos {
			lineIndex++
		}
		lineIndex--
		s.prevLineIndex = lineIndex
		return lineIndex
	}

	leftIndex := 0
	rightIndex := len(s.lineStarts) - 1
	if s.prevLineIndex >= 0 {
		rightIndex = s.prevLineIndex
	}
	for leftIndex < rightIndex {
		index := (leftIndex + rightIndex + 1) >> 1
		if s.lineStarts[index] <= pos {
			leftIndex = index
		} else {
			rightIndex = index - 1
		}
	}
	s.prevLineIndex = leftIndex
	return leftIndex
}

// Pos is a position in source, it implements sourcer.SourcePos.
type Pos struct {
	src            *Source
	pos, line, col int
}

// NewPos creates position for given source and byte offset.
func NewPos(s *Source, pos int) Pos {
	line, col := s.LineCol(pos)
	return Pos{s, pos, line, col}
}

// Source returns source, may be nil.
func (p Pos) Source() *Source {
	return p.src
}

// SourceName returns source name or empty string.
func (p Pos) SourceName() string {
	if p.src == nil {
		return ""
	}
	return p.src.name
}

// Pos returns byte offset.
func (p Pos) Pos() int {
	return p.pos
}

// Line returns line number starting with 1.
func (p Pos) Line() int {
	return p.line
}

// Col returns column number (in runes) starting with 1.
func (p Pos) Col() int {
	return p.col
}
