package levenshtein

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClosestStrings(t *testing.T) {
	samples := []struct {
		name       string
		candidates []string
		expected   []string
	}{
		{"spce", []string{"space", "name", "number"}, []string{"space"}},
		{"nam", []string{"name", "num", "space"}, []string{"name", "num"}},
		{"xyzzy", []string{"space", "name"}, []string{}},
		{"op", []string{"op", "ops"}, []string{"op"}},
	}

	for i, sample := range samples {
		got := ClosestStrings(MaxDistance, sample.name, slices.Values(sample.candidates))
		if diff := cmp.Diff(sample.expected, got); diff != "" {
			t.Errorf("sample #%d: mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestSuggest(t *testing.T) {
	names := []string{"name", "num"}
	if s := Suggest("nam", slices.Values(names)); s != `did you mean "name" or "num"?` {
		t.Errorf("unexpected suggestion %q", s)
	}
	if s := Suggest("something", slices.Values(names)); s != "" {
		t.Errorf("expecting no suggestion, got %q", s)
	}
}
