package summary

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ReasonKey builds the canonical form of a "/"-delimited reason code set.
// Case, order, surrounding whitespace, repeats and empty parts are
// insignificant: "fa/LR ", "LR/FA" and "lr /fa/FA" all yield "FA&LR".
func ReasonKey(raw string) string {
	parts := lo.Map(strings.Split(strings.ToUpper(raw), "/"), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	parts = lo.Uniq(lo.Compact(parts))
	sort.Strings(parts)
	return strings.Join(parts, "&")
}
