// Package tasks runs long list operations with progress reporting.
//
// # Bulk export
//
// [ListExporter.BulkExport] writes every given list to disk in one [formatter.Format]:
//
//  1. A producer fetches each list's items, paced by a token bucket limiter.
//  2. A pool of workers renders and writes the files.
//  3. Results are collected into a [BulkExportResult] and an export_manifest.json.
//  4. The run is recorded through the optional [ExportRecorder] (repositories.ExportRepository).
//
// A list that fails to load or write is reported and counted; the remaining lists still export.
//
// # Progress Reporting
//
// Progress is sent as [ProgressUpdate] values on a caller-owned channel. Sends never block:
// updates are dropped when the channel is full or nil.
package tasks
