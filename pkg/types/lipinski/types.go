// Package lipinski defines the wire types of the Lipinski analysis API,
// shared by the HTTP handlers and the Go client.
package lipinski

import "time"

// Result labels.
const (
	ResultPass    = "Pass"
	ResultFail    = "Fail"
	ResultInvalid = "Invalid SMILES"
)

// Counts are aggregate totals over an analyzed table.
type Counts struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
	Pass    int `json:"pass"`
	Fail    int `json:"fail"`
}

// ResultCount is one bar of the result distribution.
type ResultCount struct {
	Result string `json:"result"`
	Count  int    `json:"count"`
}

// Summary is the headline view of an analysis.
type Summary struct {
	Counts
	ValidPercent float64       `json:"valid_percent"`
	PassRate     float64       `json:"pass_rate"`
	Distribution []ResultCount `json:"distribution"`
}

// Run is a recorded analysis.
type Run struct {
	ID           string    `json:"id"`
	FileName     string    `json:"file_name"`
	SmilesColumn string    `json:"smiles_column"`
	Detected     bool      `json:"detected"`
	Counts       Counts    `json:"counts"`
	ExportKey    string    `json:"export_key,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// Descriptors are the four computed properties of a valid structure.
type Descriptors struct {
	MolWt      float64 `json:"mol_wt"`
	LogP       float64 `json:"log_p"`
	HDonors    int     `json:"h_donors"`
	HAcceptors int     `json:"h_acceptors"`
}

// Row is one analyzed input row. Values maps source column names to their
// cell values; nulls are omitted.
type Row struct {
	Index       int                    `json:"index"`
	SMILES      string                 `json:"smiles"`
	Valid       bool                   `json:"valid"`
	Descriptors *Descriptors           `json:"descriptors,omitempty"`
	Violations  []string               `json:"violations,omitempty"`
	Count       int                    `json:"violation_count"`
	Result      string                 `json:"result"`
	Values      map[string]interface{} `json:"values,omitempty"`
}

// ColumnCandidate is one column that matched a SMILES name.
type ColumnCandidate struct {
	Column string `json:"column"`
	Phase  string `json:"phase"`
	Term   string `json:"term"`
}

// AnalysisResponse is returned by a synchronous analysis.
type AnalysisResponse struct {
	Run        Run               `json:"run"`
	Summary    Summary           `json:"summary"`
	Columns    []string          `json:"columns"`
	Candidates []ColumnCandidate `json:"candidates,omitempty"`
	// Rows holds the preview requested with the rows parameter.
	Rows      []Row    `json:"rows"`
	ExportKey string   `json:"export_key,omitempty"`
	ExportURL string   `json:"export_url,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// SubmitResponse acknowledges an asynchronous analysis request.
type SubmitResponse struct {
	ObjectKey string `json:"object_key"`
	Status    string `json:"status"`
}

// ListRunsResponse is a page of recorded runs, newest first.
type ListRunsResponse struct {
	Runs   []Run `json:"runs"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// DetectRequest names the columns of a table.
type DetectRequest struct {
	Columns []string `json:"columns"`
}

// DetectResponse reports the chosen column. Column is empty when nothing
// matched.
type DetectResponse struct {
	Column     string            `json:"column,omitempty"`
	Candidates []ColumnCandidate `json:"candidates"`
	Columns    []string          `json:"columns,omitempty"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//Personal.AI order the ending
