// Package main provides the entry point for the recordsctl CLI.
//
// recordsctl retrieves pages of the record collection and prints the
// aggregate view: record ids, open records with primary-color marking, the
// closed-primary count, and neighboring page numbers.
//
// Usage:
//
//	recordsctl get 2 --base-url https://records.example.com
//	recordsctl get 1 --color red --color blue --json
//
// See --help for all available options.
package main

// main is the entry point for recordsctl.
func main() {
	Execute()
}
