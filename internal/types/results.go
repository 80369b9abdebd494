package types

// DuplicateCheck is the outcome of the dedup cascade for one trade.
// Errors holds one entry per strategy whose query failed; a result with
// IsDuplicate=false and non-empty Errors is a fail-open decision.
type DuplicateCheck struct {
	IsDuplicate bool     `json:"is_duplicate"`
	MatchedBy   string   `json:"matched_by,omitempty"`
	MatchCount  int      `json:"match_count,omitempty"`
	Attempted   int      `json:"attempted"`
	Errors      []string `json:"errors,omitempty"`
}

// FailedOpen reports whether the check returned "not duplicate" only because
// every attempted strategy errored.
func (d DuplicateCheck) FailedOpen() bool {
	return !d.IsDuplicate && d.Attempted > 0 && len(d.Errors) == d.Attempted
}

// SyncResult summarizes one extraction pass.
type SyncResult struct {
	Success        bool   `json:"success"`
	PassID         string `json:"pass_id,omitempty"`
	SuccessCount   int    `json:"success_count"`
	DuplicateCount int    `json:"duplicate_count"`
	FailedCount    int    `json:"failed_count"`
	Candidates     int    `json:"candidates"`
	Message        string `json:"message"`
	Error          string `json:"error,omitempty"`
}

// ConnectionResult is returned by the connection test command.
type ConnectionResult struct {
	Success  bool             `json:"success"`
	Database *DatabaseSummary `json:"database,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// DatabaseSummary describes the remote collection.
type DatabaseSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SaveResult is returned by the save-settings command.
type SaveResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Journal outcomes.
const (
	OutcomeSynced    = "synced"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// JournalEntry records what a pass did with one trade.
type JournalEntry struct {
	Time      string `json:"time"`
	PassID    string `json:"pass_id"`
	Trigger   string `json:"trigger"`
	Outcome   string `json:"outcome"`
	PageID    string `json:"page_id,omitempty"`
	MatchedBy string `json:"matched_by,omitempty"`
	Error     string `json:"error,omitempty"`
	Trade     Trade  `json:"trade"`
}
