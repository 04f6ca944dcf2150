// Package testutil provides shared constants and fixtures for testing across restdoc.
// These constants eliminate repeated string literals in test files and ensure consistency.
package testutil

// Test Module Configuration
//
// These constants describe the throwaway Go modules analyzed by tests.

const (
	// TestModulePath is the module path written to fixture go.mod files.
	TestModulePath = "example.com/shop"

	// TestGoMod is the go.mod content of a fixture module.
	TestGoMod = "module " + TestModulePath + "\n\ngo 1.24\n"
)

// Test Media Types

const (
	// TestJSON is the media type most fixtures produce and consume.
	TestJSON = "application/json"

	// TestXML is the secondary media type of negotiation tests.
	TestXML = "application/xml"
)
