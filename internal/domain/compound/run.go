package compound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AnalysisRun is the persisted record of one analysis call.
type AnalysisRun struct {
	ID           string        `json:"id"`
	FileName     string        `json:"file_name"`
	SmilesColumn string        `json:"smiles_column"`
	Detected     bool          `json:"detected"`
	Counts       Counts        `json:"counts"`
	ExportKey    string        `json:"export_key,omitempty"`
	Duration     time.Duration `json:"duration"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewAnalysisRun stamps a run for report with a fresh ID.
// detected is false when the caller supplied the column explicitly.
func NewAnalysisRun(fileName string, report *AnalysisReport, detected bool, elapsed time.Duration) *AnalysisRun {
	return &AnalysisRun{
		ID:           uuid.NewString(),
		FileName:     fileName,
		SmilesColumn: report.SmilesColumn,
		Detected:     detected,
		Counts:       report.Counts(),
		Duration:     elapsed,
		CreatedAt:    time.Now().UTC(),
	}
}

// RunRepository persists analysis runs.
type RunRepository interface {
	// Save inserts run. Returns errors.ErrCodeConflict on a duplicate ID.
	Save(ctx context.Context, run *AnalysisRun) error

	// FindByID returns errors.ErrCodeRunNotFound when no run has id.
	FindByID(ctx context.Context, id string) (*AnalysisRun, error)

	// List returns runs newest first.
	List(ctx context.Context, limit, offset int) ([]*AnalysisRun, error)

	// SetExportKey records where the augmented table was exported.
	SetExportKey(ctx context.Context, id, key string) error
}

//Personal.AI order the ending
