// Package log provides logging with automatic redaction of personal health
// information, built on top of the standard slog package.
//
// Validation runs touch identifiers and contact details of real patients.
// Log output is often shared with support staff or stored in systems that
// are not cleared for that data, so the SecureHandler masks it before any
// record reaches the underlying handler:
//   - Attributes whose key names a patient field (patient_id, birth_date,
//     phone_number, name, email, address, ssn)
//   - String values that look like phone numbers or email addresses,
//     whatever their key
//   - Credentials (passwords, tokens) in case they end up in a DSN or URL
//
// Even in verbose mode these values are masked.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Debug("row rejected",
//	    "patient_id", "P001",  // logged as ***REDACTED***
//	    "column", "temperature",
//	)
//
//	slog.SetDefault(logger)
package log
