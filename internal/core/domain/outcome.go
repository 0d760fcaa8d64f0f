package domain

// Status is the terminal state of an ingestion or search call.
type Status string

// Outcome statuses.
const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// ReasonAlreadyIndexed is the reason recorded on a skipped ingestion.
const ReasonAlreadyIndexed = "already indexed"

// IngestResult is the outcome record of ingesting one file.
type IngestResult struct {
	Status        Status   `json:"status" yaml:"status"`
	Reason        string   `json:"reason,omitempty" yaml:"reason,omitempty"`
	File          string   `json:"file" yaml:"file"`
	Modality      Modality `json:"modality" yaml:"modality"`
	Fingerprint   string   `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	ArchivedTo    string   `json:"archived_to,omitempty" yaml:"archived_to,omitempty"`
	Topic         string   `json:"topic,omitempty" yaml:"topic,omitempty"`
	TopicScore    *float64 `json:"topic_score,omitempty" yaml:"topic_score,omitempty"`
	ChunksIndexed int      `json:"chunks_indexed,omitempty" yaml:"chunks_indexed,omitempty"`
}

// Failed builds a failed outcome for file.
func Failed(file string, modality Modality, reason string) IngestResult {
	return IngestResult{Status: StatusFailed, Reason: reason, File: file, Modality: modality}
}

// BatchResult tallies the outcomes of a folder ingestion.
type BatchResult struct {
	RunID   string         `json:"run_id" yaml:"run_id"`
	Total   int            `json:"total" yaml:"total"`
	OK      int            `json:"ok" yaml:"ok"`
	Skipped int            `json:"skipped" yaml:"skipped"`
	Failed  int            `json:"failed" yaml:"failed"`
	Details []IngestResult `json:"details" yaml:"details"`
}

// NewBatchResult returns an empty tally for the given run.
func NewBatchResult(runID string) *BatchResult {
	return &BatchResult{RunID: runID, Details: []IngestResult{}}
}

// Record adds one item's outcome to the tally.
func (b *BatchResult) Record(r IngestResult) {
	b.Total++
	switch r.Status {
	case StatusOK:
		b.OK++
	case StatusSkipped:
		b.Skipped++
	default:
		b.Failed++
	}
	b.Details = append(b.Details, r)
}
