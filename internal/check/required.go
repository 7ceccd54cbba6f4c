package check

import (
	"fmt"

	"github.com/nao1215/recordcheck/internal/model"
)

// DefaultRequiredFields returns the columns that must hold a value.
func DefaultRequiredFields() []string {
	return []string{"patient_id", "test_date", "facility_code"}
}

// ValidateRequired reports one issue per required column that has null or
// blank values.
//
// Design decision: A required column that is absent from the file is skipped
// rather than reported as 100% missing. Input schemas vary between sources
// and flagging every row of a column the source never exports is noise.
func ValidateRequired(ds *model.Dataset, columns []string) []model.Issue {
	var issues []model.Issue

	for _, col := range columns {
		if !ds.HasColumn(col) {
			continue
		}
		missing := ds.Count(col, model.Value.IsBlank)
		if missing == 0 {
			continue
		}
		issues = append(issues, model.NewIssue(model.CheckRequired, col, missing,
			fmt.Sprintf("Found %d records missing required field: %s", missing, col)))
	}

	return issues
}
