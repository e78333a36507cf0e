package compound

import "time"

// Event topics.
const (
	TopicAnalysisRequested = "lipinski.analysis.requested"
	TopicAnalysisCompleted = "lipinski.analysis.completed"
)

// AnalysisRequested asks a worker to analyze a file already uploaded to
// object storage.
type AnalysisRequested struct {
	ObjectKey string    `json:"object_key"`
	FileName  string    `json:"file_name"`
	Column    string    `json:"column,omitempty"`
	Requested time.Time `json:"requested_at"`
}

// AnalysisCompleted announces a finished run.
type AnalysisCompleted struct {
	RunID        string    `json:"run_id"`
	FileName     string    `json:"file_name"`
	SmilesColumn string    `json:"smiles_column"`
	Counts       Counts    `json:"counts"`
	ExportKey    string    `json:"export_key,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

//Personal.AI order the ending
