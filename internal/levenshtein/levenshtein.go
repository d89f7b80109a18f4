// Copyright 2025 The OPA Authors
// SPDX-License-Identifier: Apache-2.0

// Package levenshtein finds names close to a misspelled one.
package levenshtein

import (
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

// MaxDistance is the largest edit distance reported by Suggest.
const MaxDistance = 3

// ClosestStrings returns the candidates with the smallest distance to a that is not above minDistance, sorted.
func ClosestStrings(minDistance int, a string, candidates iter.Seq[string]) []string {
	closestStrings := []string{}
	for c := range candidates {
		levDist := levenshtein.ComputeDistance(a, c)
		switch {
		case levDist < minDistance:
			closestStrings = []string{c}
			minDistance = levDist
		case levDist == minDistance:
			closestStrings = append(closestStrings, c)
		default:
			continue
		}
	}
	slices.Sort(closestStrings)
	return slices.Compact(closestStrings)
}

// Suggest returns a hint like `did you mean "foo" or "bar"?` or empty string if nothing is close enough.
func Suggest(a string, candidates iter.Seq[string]) string {
	closest := ClosestStrings(MaxDistance, a, candidates)
	if len(closest) == 0 {
		return ""
	}

	quoted := make([]string, len(closest))
	for i, c := range closest {
		quoted[i] = strconv.Quote(c)
	}
	return "did you mean " + strings.Join(quoted, " or ") + "?"
}
