// Package formatter exports TMDB lists to CSV, Markdown, plain text and JSON.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/shared"
)

// Format is an export format name as accepted by --format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or a common alias ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json", "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (csv, markdown, txt, json)", shared.ErrInvalidFlag, s)
}

// ExportToCSV converts a MovieList to CSV with columns: ID, Title, Type, Year, Rating, Poster
func ExportToCSV(list *models.MovieList, imageBase string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Type", "Year", "Rating", "Poster"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range list.Items {
		record := []string{
			strconv.Itoa(item.ID),
			item.DisplayTitle(),
			item.Kind(),
			item.Year(),
			item.Rating(),
			item.PosterURL(imageBase, models.PosterMedium),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a MovieList to Markdown. Each item links its small poster when one exists.
func ExportToMarkdown(list *models.MovieList, imageBase, coverFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", list.Name)

	if coverFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", coverFilename)
	}

	if list.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", list.Description)
	}
	if list.CreatedBy != "" {
		fmt.Fprintf(&buf, "**Created by**: %s\n", list.CreatedBy)
	}
	fmt.Fprintf(&buf, "**Items**: %d\n\n", len(list.Items))

	buf.WriteString("## Items\n\n")
	for i, item := range list.Items {
		fmt.Fprintf(&buf, "%d. %s (%s) ★ %s", i+1, item.DisplayTitle(), item.Year(), item.Rating())
		if poster := item.PosterURL(imageBase, models.PosterSmall); poster != "" {
			fmt.Fprintf(&buf, " [poster](%s)", poster)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a MovieList to plain text
func ExportToText(list *models.MovieList) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "List: %s\n", list.Name)
	if list.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", list.Description)
	}
	fmt.Fprintf(&buf, "Items: %d\n\n", len(list.Items))

	for i, item := range list.Items {
		fmt.Fprintf(&buf, "%d. %s (%s)\n", i+1, item.DisplayTitle(), item.Year())
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the full list, items included.
func ExportToJSON(list *models.MovieList) ([]byte, error) {
	return shared.MarshalJSON(list, true)
}

// ToMetadataJSON renders the list summary without items.
func ToMetadataJSON(list models.List) ([]byte, error) {
	return shared.MarshalJSON(list, true)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile    string
	MetadataFile string
}

// WriteCSVExport writes {base}_items.csv and {base}_metadata.json, defaulting base to the list id.
func WriteCSVExport(list *models.MovieList, base, imageBase string) (*CSVExportResult, error) {
	if base == "" {
		base = list.ID.String()
	}

	csvData, err := ExportToCSV(list, imageBase)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	itemsFile := base + "_items.csv"
	if err := os.WriteFile(itemsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(list.List)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := base + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{ItemsFile: itemsFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport writes {dir}/README.md and, when the list has a poster, {dir}/cover.jpg.
//
// dir defaults to the list id. A cover that cannot be downloaded is skipped.
func WriteMarkdownExport(list *models.MovieList, outputDir, imageBase string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = list.ID.String()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	var coverFilename string
	if coverURL := models.ImageURL(imageBase, models.PosterMedium, list.PosterPath); coverURL != "" {
		if data, err := DownloadImage(coverURL); err == nil {
			path := filepath.Join(outputDir, "cover.jpg")
			if err := os.WriteFile(path, data, 0644); err == nil {
				coverFilename = "cover.jpg"
				result.CoverImage = path
				result.Files = append(result.Files, path)
			}
		}
	}

	mdData, err := ExportToMarkdown(list, imageBase, coverFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport writes plain text, defaulting to {list.ID}_items.txt.
func WriteTextExport(list *models.MovieList, path string) (string, error) {
	if path == "" {
		path = list.ID.String() + "_items.txt"
	}

	data, err := ExportToText(list)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// WriteJSONExport writes the list as JSON, defaulting to {list.ID}.json.
func WriteJSONExport(list *models.MovieList, path string) (string, error) {
	if path == "" {
		path = list.ID.String() + ".json"
	}

	data, err := ExportToJSON(list)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}
	return path, nil
}

// Write exports list into dir in the given format and returns the files written.
//
// File names are derived from the list id.
func Write(list *models.MovieList, format Format, dir, imageBase string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	base := filepath.Join(dir, list.ID.String())

	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(list, base, imageBase)
		if err != nil {
			return nil, err
		}
		return []string{res.ItemsFile, res.MetadataFile}, nil
	case FormatMarkdown:
		res, err := WriteMarkdownExport(list, base, imageBase)
		if err != nil {
			return nil, err
		}
		return res.Files, nil
	case FormatText:
		path, err := WriteTextExport(list, base+"_items.txt")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	case FormatJSON:
		path, err := WriteJSONExport(list, base+".json")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
}
