package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tmdbx/internal/formatter"
	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/services"
	"github.com/desertthunder/tmdbx/internal/shared"
	"golang.org/x/time/rate"
)

// ExportRecorder stores a finished export run.
type ExportRecorder interface {
	Create(rec *models.ExportRecord) error
}

// ListExporter exports a user's lists.
type ListExporter struct {
	lists    services.ListService
	recorder ExportRecorder
	logger   *log.Logger
}

// NewListExporter creates a [ListExporter]. recorder may be nil.
func NewListExporter(lists services.ListService, recorder ExportRecorder, logger *log.Logger) *ListExporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ListExporter{
		lists:    lists,
		recorder: recorder,
		logger:   shared.WithLogger(logger, "component", "export"),
	}
}

// BulkExportOpts contains configuration for bulk list exports.
type BulkExportOpts struct {
	Format       formatter.Format // Export format: json, csv, markdown, txt
	OutputDir    string           // Base output directory (default: tmdb_export_{epoch})
	NumWorkers   int              // Concurrent workers (default: 5, max: 10)
	RateLimit    float64          // List fetches per second (default: 5)
	ImageBaseURL string           // Image CDN root for poster links
	AccountID    int              // Owner, recorded with the run
	SessionID    string           // Session used to read private lists
}

// ListExportResult is the outcome for one list.
type ListExportResult struct {
	ListID   models.ListID
	ListName string
	Success  bool
	Files    []string
	Error    error
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalLists        int
	SuccessfulExports int
	FailedExports     int
	Results           []ListExportResult
	OutputDirectory   string
	ManifestPath      string
	RecordID          string
}

type listExportJob struct {
	list *models.MovieList
}

func (e *ListExporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// BulkExport exports lists concurrently with rate limiting and progress tracking.
//
// Partial failures are reported per list. The returned error is reserved for failures that stop the
// whole run: a missing output directory or manifest.
func (e *ListExporter) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, lists []models.List, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.lists == nil {
		return nil, fmt.Errorf("%w: list service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("tmdb_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(lists)
	result := &BulkExportResult{
		TotalLists:      total,
		OutputDirectory: opts.OutputDir,
		Results:         make([]ListExportResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan listExportJob, total)
	results := make(chan ListExportResult, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	e.sendProgress(prog, fetchingListsUpdate(total))

	go func() {
		defer close(jobs)
		for i, l := range lists {
			if err := limiter.Wait(ctx); err != nil {
				results <- ListExportResult{ListID: l.ID, ListName: l.Name, Error: err}
				continue
			}

			e.sendProgress(prog, fetchListUpdate(i+1, total, l))

			full, err := e.lists.ListDetails(ctx, l.ID, opts.SessionID)
			if err != nil {
				results <- ListExportResult{
					ListID:   l.ID,
					ListName: l.Name,
					Error:    fmt.Errorf("failed to fetch list: %w", err),
				}
				continue
			}
			jobs <- listExportJob{list: full}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, total, res.ListName, len(res.Files)))
		} else {
			result.FailedExports++
			e.logger.Warn("list export failed", "list_id", res.ListID, "error", res.Error)
			e.sendProgress(prog, exportFailedUpdate(completed, total, res.ListName, res.Error))
		}
	}

	sort.Slice(result.Results, func(i, j int) bool { return result.Results[i].ListID < result.Results[j].ListID })

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := WriteManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))

	e.record(result, opts)
	return result, nil
}

// exportWorker writes lists from the jobs channel.
func (e *ListExporter) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan listExportJob, results chan<- ListExportResult, opts BulkExportOpts) {
	defer wg.Done()

	for job := range jobs {
		res := ListExportResult{ListID: job.list.ID, ListName: job.list.Name}
		if err := ctx.Err(); err != nil {
			res.Error = err
			results <- res
			continue
		}

		files, err := formatter.Write(job.list, opts.Format, opts.OutputDir, opts.ImageBaseURL)
		if err != nil {
			res.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		} else {
			res.Success = true
			res.Files = files
		}
		results <- res
	}
}

// record stores the run. A failure is logged and does not fail the export.
func (e *ListExporter) record(result *BulkExportResult, opts BulkExportOpts) {
	if e.recorder == nil || opts.AccountID <= 0 {
		return
	}

	rec := &models.ExportRecord{
		AccountID:  opts.AccountID,
		Format:     string(opts.Format),
		OutputDir:  opts.OutputDir,
		TotalLists: result.TotalLists,
		Successful: result.SuccessfulExports,
		Failed:     result.FailedExports,
	}
	if err := e.recorder.Create(rec); err != nil {
		e.logger.Error("failed to record export", "error", err)
		return
	}
	result.RecordID = rec.ID
}

// ExportAll loads every page of the account's lists and exports all of them.
func (e *ListExporter) ExportAll(ctx context.Context, prog chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.lists == nil {
		return nil, fmt.Errorf("%w: list service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.AccountID <= 0 || opts.SessionID == "" {
		return nil, shared.ErrNotAuthenticated
	}

	var lists []models.List
	for p, pages := 1, 1; p <= pages; p++ {
		page, err := e.lists.UserLists(ctx, opts.AccountID, opts.SessionID, p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		lists = append(lists, page.Results...)
		pages = page.TotalPages
	}
	if len(lists) == 0 {
		return nil, errors.New("no lists to export")
	}

	return e.BulkExport(ctx, prog, lists, opts)
}
