// Package goldie wraps github.com/sebdah/goldie/v2 with the fixture layout used across this repository.
package goldie

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// New creates a goldie instance reading fixtures from fixtures/<name>.golden.
// Run the tests with -update to rewrite the fixtures.
func New(t *testing.T) *goldie.Goldie {
	t.Helper()

	return goldie.New(t,
		goldie.WithFixtureDir("fixtures"),
		goldie.WithNameSuffix(".golden"),
	)
}
