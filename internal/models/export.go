package models

import (
	"fmt"
	"time"
)

// ExportRecord is one persisted bulk export run.
type ExportRecord struct {
	ID         string    `json:"id"`
	AccountID  int       `json:"account_id"`
	Format     string    `json:"format"`
	OutputDir  string    `json:"output_dir"`
	TotalLists int       `json:"total_lists"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	CreatedAt  time.Time `json:"created_at"`
}

func (e *ExportRecord) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("export record missing id")
	}
	if e.AccountID <= 0 {
		return fmt.Errorf("export record missing account id")
	}
	if e.Format == "" || e.OutputDir == "" {
		return fmt.Errorf("export record missing format or output dir")
	}
	return nil
}
