//go:build property
// +build property

package routes

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestRouteTableProperties verifies the table's total-resolution guarantees.
func TestRouteTableProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	table := DefaultSite()
	known := make(map[string]bool)
	for _, r := range table.All() {
		known[r.PageID] = true
	}

	// Property: resolution is total; every input lands on a routed page
	properties.Property("every path resolves to a routed page", prop.ForAll(
		func(path string) bool {
			return known[table.Resolve(path).PageID]
		},
		gen.AnyString(),
	))

	// Property: normalization strips decoration without changing the target
	properties.Property("hash and slash prefixes do not change resolution", prop.ForAll(
		func(path string) bool {
			base := table.Resolve(path)
			return table.Resolve("#"+path) == base &&
				table.Resolve("/"+path) == base
		},
		gen.RegexMatch(`^[a-z][a-z0-9-]{0,20}$`),
	))

	// Property: normalization is idempotent
	properties.Property("normalize is idempotent", prop.ForAll(
		func(path string) bool {
			once := Normalize(path)
			return Normalize(once) == once
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
