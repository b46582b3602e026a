package api

import "time"

// SubmitRequest is the body of POST /api/download.
type SubmitRequest struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

// SubmitResponse reports the outcome of a submission. Token is set on success
// and Error otherwise.
type SubmitResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token,omitempty"`
	Error string `json:"error,omitempty"`
}

// DependencyStatus mirrors deps.Status for JSON output.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// Health is the body of GET /health. Only Status is guaranteed; the rest is
// filled when the server runs inside the daemon.
type Health struct {
	Status           string             `json:"status"`
	ActiveFetches    int64              `json:"active_fetches"`
	ScratchDir       string             `json:"scratch_dir,omitempty"`
	ScratchFreeBytes uint64             `json:"scratch_free_bytes,omitempty"`
	PendingArtifacts int                `json:"pending_artifacts"`
	LedgerDropped    int64              `json:"ledger_dropped"`
	Dependencies     []DependencyStatus `json:"dependencies,omitempty"`
}

// RequestEntry is one ledger row in the admin view.
type RequestEntry struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Timestamp int64     `json:"timestamp"`
	Time      time.Time `json:"time"`
}

// RequestsResponse is the body of GET /api/admin/requests.
type RequestsResponse struct {
	Total   int64          `json:"total"`
	Limit   int            `json:"limit"`
	Entries []RequestEntry `json:"entries"`
}

// ErrorResponse is the generic JSON error envelope outside the submit route.
type ErrorResponse struct {
	Error string `json:"error"`
}
