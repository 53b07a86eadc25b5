package domain

import "context"

// SourceAdapter translates one agency's API into canonical rows.
type SourceAdapter interface {
	// Source identifies the agency this adapter talks to.
	Source() Source

	// Fetch queries the agency for nativeCode over the given countries and
	// years. Countries use canonical codes ("WORLD", ISO3). Rows with missing
	// values are dropped. Transport and payload failures are returned as
	// *SourceUnavailableError; an empty but valid answer is an empty table.
	Fetch(ctx context.Context, nativeCode string, countries []string, years []int) (ResultTable, error)

	// Probe performs a lightweight metadata request to check reachability.
	// The returned detail describes what the endpoint answered.
	Probe(ctx context.Context) (detail string, err error)
}
