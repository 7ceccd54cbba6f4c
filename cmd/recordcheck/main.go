// Package main provides the entry point for the recordcheck CLI.
//
// recordcheck validates and cleans tabular health records. It removes
// duplicate submissions, flags implausible dates and vital signs, reports
// missing required fields and normalizes phone numbers.
//
// Usage:
//
//	recordcheck validate <file.csv>...
//	recordcheck history --list
//
// See --help for all available options.
package main

// main is the entry point for recordcheck.
func main() {
	Execute()
}
