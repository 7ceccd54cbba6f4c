package check

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/recordcheck/internal/model"
)

// DefaultDedupKeys returns the columns that identify a record.
func DefaultDedupKeys() []string {
	return []string{"patient_id", "test_date"}
}

// RemoveDuplicates drops every row whose key equals the key of an earlier
// row, keeping the first occurrence in original order. The key is made of
// the configured key columns that exist in the dataset; when none exist
// nothing is removed. Nulls compare equal to each other.
//
// It always returns exactly one issue reporting the removed count, which is
// also returned separately for callers that track row counts.
func RemoveDuplicates(ds *model.Dataset, keys []string) (model.Issue, int) {
	present := make([]string, 0, len(keys))
	for _, k := range keys {
		if ds.HasColumn(k) {
			present = append(present, k)
		}
	}

	removed := 0
	if len(present) > 0 {
		seen := make(map[string]struct{}, ds.Len())
		removed = ds.Retain(func(_ int, r model.Row) bool {
			key := rowKey(r, present)
			if _, dup := seen[key]; dup {
				return false
			}
			seen[key] = struct{}{}
			return true
		})
	}

	issue := model.NewIssue(model.CheckDuplicates, strings.Join(present, ","), removed,
		fmt.Sprintf("Removed %d duplicate records", removed))
	return issue, removed
}

// rowKey encodes the key columns of r into a single comparable string.
// Each part carries its kind and length so that null and "" do not collide
// and no value can spill into the next part.
func rowKey(r model.Row, columns []string) string {
	var sb strings.Builder
	for _, c := range columns {
		v := r.Get(c)
		s := v.String()
		sb.WriteString(v.Kind().String())
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(len(s)))
		sb.WriteByte(':')
		sb.WriteString(s)
	}
	return sb.String()
}
