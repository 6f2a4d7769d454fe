package model

// OutcomeStatus indicates how processing a single release ended.
type OutcomeStatus string

// Outcome status constants.
const (
	// StatusFetched means a verified file was materialized (or an
	// existing on-disk file was adopted) and a catalog record written.
	StatusFetched OutcomeStatus = "FETCHED"
	// StatusSkipped means the release was deliberately not fetched:
	// tag-filtered or already known to the dedup index.
	StatusSkipped OutcomeStatus = "SKIPPED"
	// StatusFailed means the fetch was attempted and did not produce a
	// catalogued file. Failed releases stay unknown to the dedup index
	// and are eligible for retry on a future run.
	StatusFailed OutcomeStatus = "FAILED"
)

// Outcome is the per-release result returned by the fetch coordinator.
type Outcome struct {
	Status OutcomeStatus
	Reason string
	Record *CatalogRecord
	Err    error
}

// Fetched builds a success outcome carrying the committed record.
func Fetched(record *CatalogRecord) Outcome {
	return Outcome{Status: StatusFetched, Record: record}
}

// Skipped builds a skip outcome with a human-readable reason.
func Skipped(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason}
}

// Failed builds a failure outcome wrapping the per-item error.
func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}
