package events

import (
	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event/topic"
)

// ExportCompleted is published after an export has been encoded and
// archived.
type ExportCompleted struct {
	Record domain.ExportRecord
}

func (ExportCompleted) EventType() topic.Topic { return TypeExportCompleted }

// ExportScheduled is published when an export is queued for later.
type ExportScheduled struct {
	Record domain.ExportRecord
}

func (ExportScheduled) EventType() topic.Topic { return TypeExportScheduled }

// ExportFailed is published when encoding or archiving fails.
type ExportFailed struct {
	Record domain.ExportRecord
	Err    error
}

func (ExportFailed) EventType() topic.Topic { return TypeExportFailed }
