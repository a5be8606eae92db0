package tasks

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/tmdbx/internal/formatter"
	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/shared"
)

type manifestEntry struct {
	ListID models.ListID `json:"list_id"`
	Name   string        `json:"name"`
	Status string        `json:"status"`
	Files  []string      `json:"files,omitempty"`
	Error  string        `json:"error,omitempty"`
}

type manifest struct {
	Format            string          `json:"format"`
	ExportedAt        time.Time       `json:"exported_at"`
	OutputDirectory   string          `json:"output_directory"`
	TotalLists        int             `json:"total_lists"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Lists             []manifestEntry `json:"lists"`
}

// WriteManifest writes a JSON summary of result to path.
func WriteManifest(result *BulkExportResult, format formatter.Format, path string) error {
	m := manifest{
		Format:            string(format),
		ExportedAt:        time.Now().UTC(),
		OutputDirectory:   result.OutputDirectory,
		TotalLists:        result.TotalLists,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		Lists:             make([]manifestEntry, 0, len(result.Results)),
	}

	for _, r := range result.Results {
		entry := manifestEntry{ListID: r.ListID, Name: r.ListName, Files: r.Files, Status: "success"}
		if !r.Success {
			entry.Status = "failed"
			if r.Error != nil {
				entry.Error = r.Error.Error()
			}
		}
		m.Lists = append(m.Lists, entry)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
