package domain

import "time"

// ExportFormat is an encoding supported by the export encoders.
type ExportFormat string

const (
	FormatJSON     ExportFormat = "json"
	FormatCSV      ExportFormat = "csv"
	FormatMarkdown ExportFormat = "markdown"
)

// ExportStatus is the state of an export job.
type ExportStatus string

const (
	ExportScheduled ExportStatus = "scheduled"
	ExportCompleted ExportStatus = "completed"
	ExportFailed    ExportStatus = "failed"
	ExportCancelled ExportStatus = "cancelled"
)

// ExportRecord is one entry of the export history.
type ExportRecord struct {
	ID           string       `json:"id"`
	ProjectID    string       `json:"project_id,omitempty"`
	Format       ExportFormat `json:"format"`
	Status       ExportStatus `json:"status"`
	CommentCount int          `json:"comment_count"`
	Size         int          `json:"size"`
	Error        string       `json:"error,omitempty"`
	RequestedBy  string       `json:"requested_by,omitempty"`
	ScheduledFor *time.Time   `json:"scheduled_for,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}
