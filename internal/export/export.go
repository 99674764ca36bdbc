// Package export writes a leaderboard as a spreadsheet for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"quizshare/internal/domain"
)

// SheetName is the worksheet XLSX exports are written to.
const SheetName = "Leaderboard"

var header = []string{"Rank", "Name", "Score", "Total Questions", "Percent", "Time", "Badge", "Submitted At"}

// WriteCSV writes the leaderboard as UTF-8 CSV with a BOM so Excel picks the
// right encoding.
func WriteCSV(w io.Writer, lb domain.Leaderboard) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range lb.Entries {
		record := []string{
			strconv.Itoa(e.Rank),
			sanitize(e.Result.UserName),
			strconv.Itoa(e.Result.Score),
			strconv.Itoa(e.Result.TotalQuestions),
			strconv.Itoa(e.Percent),
			FormatDuration(e.Result.TimeElapsed),
			string(e.Badge),
			e.Result.SubmittedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", e.Rank, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the leaderboard as a single-sheet workbook.
func WriteXLSX(w io.Writer, lb domain.Leaderboard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	headers := make([]interface{}, len(header))
	for i, h := range header {
		headers[i] = h
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range lb.Entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			e.Rank,
			sanitize(e.Result.UserName),
			e.Result.Score,
			e.Result.TotalQuestions,
			e.Percent,
			FormatDuration(e.Result.TimeElapsed),
			string(e.Badge),
			e.Result.SubmittedAt.UTC().Format(time.RFC3339),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", e.Rank, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	return f.Write(w)
}

// FormatDuration renders seconds as m:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// sanitize neutralises values a spreadsheet would evaluate as a formula.
func sanitize(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
