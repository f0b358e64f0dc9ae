// Package report renders finished benchmark results for humans and
// machines. Reporters consume only the read API of model.Results; they
// never reach into the scheduler or timeout internals.
package report

import (
	"io"
	"sort"
	"strings"

	"github.com/seantiz/benchtop/internal/model"
)

// Reporter writes a rendering of the given results to w. Implementations
// must tolerate an empty slice.
type Reporter interface {
	Report(w io.Writer, results []*model.Results) error
}

// formatMarks renders variation marks as a stable "k=v" list, sorted by key.
func formatMarks(marks map[string]string) string {
	if len(marks) == 0 {
		return ""
	}
	keys := make([]string, 0, len(marks))
	for k := range marks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + marks[k]
	}
	return strings.Join(parts, " ")
}

// caseLabel identifies one run within a group: the title plus its variation
// marks when present.
func caseLabel(r *model.Results) string {
	marks := formatMarks(r.VariationMarks())
	if marks == "" {
		return r.Title()
	}
	return r.Title() + " [" + marks + "]"
}

// groupResults buckets results by group, preserving first-seen group order
// and the result order within each group.
func groupResults(results []*model.Results) ([]string, map[string][]*model.Results) {
	var order []string
	byGroup := make(map[string][]*model.Results)
	for _, r := range results {
		if _, seen := byGroup[r.Group()]; !seen {
			order = append(order, r.Group())
		}
		byGroup[r.Group()] = append(byGroup[r.Group()], r)
	}
	return order, byGroup
}
