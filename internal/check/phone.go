package check

import (
	"fmt"
	"strings"

	"github.com/nao1215/recordcheck/internal/model"
)

// Default phone rule values.
const (
	// DefaultPhoneColumn is the column holding contact numbers.
	DefaultPhoneColumn = "phone_number"

	// DefaultPhoneMinDigits is the shortest valid number (national format).
	DefaultPhoneMinDigits = 10

	// DefaultPhoneMaxDigits is the longest valid number (E.164 allows 15).
	DefaultPhoneMaxDigits = 15
)

// PhoneRules configures ValidatePhones.
type PhoneRules struct {
	Column    string
	MinDigits int
	MaxDigits int
}

// DefaultPhoneRules returns the built-in phone rules.
func DefaultPhoneRules() PhoneRules {
	return PhoneRules{
		Column:    DefaultPhoneColumn,
		MinDigits: DefaultPhoneMinDigits,
		MaxDigits: DefaultPhoneMaxDigits,
	}
}

// Validate reports whether the digit bounds can be applied.
func (r PhoneRules) Validate() error {
	if r.MinDigits <= 0 || r.MinDigits > r.MaxDigits {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidPhoneRules, r.MinDigits, r.MaxDigits)
	}
	return nil
}

// validLength reports whether a normalized number has an accepted length.
func (r PhoneRules) validLength(digits string) bool {
	n := len(digits)
	return n >= r.MinDigits && n <= r.MaxDigits
}

// NormalizePhone strips every character that is not an ASCII digit.
// "+234-801-234-5679" becomes "2348012345679".
func NormalizePhone(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// ValidatePhones normalizes the phone column to digit-only strings in place
// and reports a single issue counting values whose digit count is outside
// [MinDigits, MaxDigits]. Null values stay null and are not counted; rows are
// never removed.
func ValidatePhones(ds *model.Dataset, rules PhoneRules) []model.Issue {
	if !ds.HasColumn(rules.Column) {
		return nil
	}

	ds.Transform(rules.Column, func(v model.Value) model.Value {
		if v.IsNull() {
			return v
		}
		return model.StringValue(NormalizePhone(v.String()))
	})

	invalid := ds.Count(rules.Column, func(v model.Value) bool {
		return !v.IsNull() && !rules.validLength(v.Text())
	})
	if invalid == 0 {
		return nil
	}

	return []model.Issue{
		model.NewIssue(model.CheckPhone, rules.Column, invalid,
			fmt.Sprintf("Found %d records with invalid phone numbers", invalid)),
	}
}
