// Package query answers "which words contain this substring" on top of the suffix index, with result caching and latest-wins re-query sessions for interactive front ends.
package query

import "context"

// ISearcher defines the interface for substring search engines
type ISearcher interface {
	// Search returns every word containing query, in load order, once each
	Search(query string) ([]Match, error)

	// SearchContext is Search with cancellation
	SearchContext(ctx context.Context, query string) ([]Match, error)

	// Stats returns statistics about the loaded dictionary and index
	Stats() map[string]int
}
