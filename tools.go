//go:build tools

package tools

// Tool dependencies were previously tracked here with blank imports.
// mockery is used as an installed binary (not via go run), so no import
// is needed. Run: mockery (from the repo root) to regenerate mocks.
