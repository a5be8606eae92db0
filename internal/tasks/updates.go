package tasks

import (
	"fmt"

	"github.com/desertthunder/tmdbx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Phase of a bulk export.
type Phase int

const (
	FetchLists Phase = iota
	FetchList
	ExportList
	PhaseManifest
)

func (p Phase) String() string {
	switch p {
	case FetchLists:
		return "fetch_lists"
	case FetchList:
		return "fetch_list"
	case ExportList:
		return "export_list"
	case PhaseManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingListsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLists,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d lists...", total),
	}
}

func fetchListUpdate(step, total int, l models.List) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchList,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching: %s...", step, total, l.Name),
		Data:    l,
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportList,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportList,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
	}
}
