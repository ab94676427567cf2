package failures

import "time"

// Phase names the pipeline step that failed.
type Phase string

const (
	PhaseCatalog Phase = "catalog"
	PhaseOCR     Phase = "ocr"
	PhaseExtract Phase = "extract"
	PhaseSummary Phase = "summary"
	PhaseArchive Phase = "archive"
)

// Failure represents a persisted analysis failure entry
type Failure struct {
	ID          int64     `json:"id"`
	AnalysisID  string    `json:"analysis_id"`
	Filename    string    `json:"filename,omitempty"`
	Phase       Phase     `json:"phase"`
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
