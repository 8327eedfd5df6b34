package constants

// JobStatus is the canonical status for a queued parse job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued    JobStatus = "QUEUED"    // waiting for a worker
	JobStatusRunning   JobStatus = "RUNNING"   // in progress
	JobStatusCompleted JobStatus = "COMPLETED" // document read, normalized and all attributes resolved
	JobStatusFailed    JobStatus = "FAILED"    // document-level failure
)
