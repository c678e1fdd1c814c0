package domain

// SkippedResource records a cleanup candidate that was not approved for
// deletion, with a human-readable reason.
type SkippedResource struct {
	ID     string
	Reason string
}

// CleanupError records a candidate whose safety check itself failed.
type CleanupError struct {
	ID  string
	Err string
}

// CleanupResult classifies a batch of cleanup candidates. The classifier
// never deletes anything; callers perform the real deletion for the IDs
// in Deleted.
type CleanupResult struct {
	Deleted []string
	Skipped []SkippedResource
	Errors  []CleanupError
}
