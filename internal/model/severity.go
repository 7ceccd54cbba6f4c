package model

// Severity represents how urgently a validation issue needs review.
// It is informational only: no check changes behavior based on it, and
// the report treats any issue with affected rows as "needs review".
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates an informational issue, for example a
	// deduplication pass that removed nothing.
	SeverityInfo Severity = iota

	// SeverityLow indicates cosmetic problems that do not change meaning.
	// Examples: removed duplicates, malformed phone numbers.
	SeverityLow

	// SeverityMedium indicates values that are present but implausible.
	// Examples: future test dates, out-of-range vital signs.
	SeverityMedium

	// SeverityHigh indicates data that is missing where a record cannot be
	// used without it.
	// Examples: missing patient identifier or facility code.
	SeverityHigh
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// Check names identify which rule of the catalog produced an issue.
const (
	CheckDuplicates    = "duplicates"
	CheckFutureDates   = "future_test_date"
	CheckEarlyDates    = "early_test_date"
	CheckImprobableAge = "improbable_age"
	CheckRange         = "numeric_range"
	CheckRequired      = "required_field"
	CheckPhone         = "phone_format"
)

// CheckInfo contains metadata about a check including severity,
// impact description, and remediation recommendation.
type CheckInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// checkInfoMapping maps check names to their metadata.
// This centralized mapping keeps severities consistent between the text,
// markdown and CSV renderings of a report.
var checkInfoMapping = map[string]CheckInfo{
	CheckRequired: {
		Severity:       SeverityHigh,
		Impact:         "Records without this field cannot be attributed or reported.",
		Recommendation: "Backfill the field from the source system or exclude the records from downstream reporting.",
	},
	CheckFutureDates: {
		Severity:       SeverityMedium,
		Impact:         "A test dated in the future usually means a typo or a swapped day and month.",
		Recommendation: "Verify the test date against the laboratory record.",
	},
	CheckEarlyDates: {
		Severity:       SeverityMedium,
		Impact:         "Test dates before 2000 predate the program and are likely default or placeholder values.",
		Recommendation: "Check for placeholder dates such as 1900-01-01 in the export.",
	},
	CheckImprobableAge: {
		Severity:       SeverityMedium,
		Impact:         "A negative age or an age above 110 points to a wrong birth date.",
		Recommendation: "Confirm the birth date with the patient registry.",
	},
	CheckRange: {
		Severity:       SeverityMedium,
		Impact:         "Values outside physiological bounds distort aggregates and alerts.",
		Recommendation: "Review the measurement unit and the capture device for these records.",
	},
	CheckPhone: {
		Severity:       SeverityLow,
		Impact:         "Patients cannot be contacted for follow-up.",
		Recommendation: "Collect a full number including the country code (10-15 digits).",
	},
	CheckDuplicates: {
		Severity:       SeverityLow,
		Impact:         "Duplicate submissions inflate case counts.",
		Recommendation: "Deduplicate at the point of entry; the first occurrence was kept.",
	},
}

// GetSeverity returns the severity level for a check.
// Returns SeverityInfo if the check is not in the mapping.
func GetSeverity(check string) Severity {
	if info, ok := checkInfoMapping[check]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetCheckInfo returns the full metadata for a check.
// Returns a default CheckInfo with SeverityInfo if the check is not in the mapping.
func GetCheckInfo(check string) CheckInfo {
	if info, ok := checkInfoMapping[check]; ok {
		return info
	}
	return CheckInfo{
		Severity:       SeverityInfo,
		Impact:         "Informational finding.",
		Recommendation: "No action required.",
	}
}
