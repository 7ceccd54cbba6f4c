// Package check implements the fixed catalog of validation rules applied to
// a dataset.
//
// The catalog is:
//   - RemoveDuplicates: drops repeated rows by key, keeping the first
//   - ValidateDates: flags future or pre-floor test dates and improbable ages
//   - ValidateRanges: flags numeric fields outside physiological bounds
//   - ValidateRequired: flags missing values in required columns
//   - ValidatePhones: normalizes phone numbers to digits and flags bad lengths
//
// Every rule first asks the dataset whether its columns exist and does
// nothing when they do not. Per-row problems are never returned as errors:
// a value that cannot be coerced becomes null and the problem surfaces as a
// counted model.Issue.
//
// This is not a rule framework. There is no registration mechanism; the
// thresholds are configurable but the set of rules is not.
package check
