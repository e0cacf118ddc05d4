package services

import (
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/krshsl/mulakat/backend/assessment"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const resultsSheet = "Results"

var resultsHeaders = []string{
	"First Name", "Last Name", "Email", "Status", "Registered At", "Completed At",
	"Responses", "Emotion Score", "Knowledge Score", "Final Score",
}

// resultRow flattens one participant summary into spreadsheet cells.
func resultRow(row assessment.ParticipantSummary) []interface{} {
	cells := []interface{}{
		row.FirstName,
		row.LastName,
		row.Email,
		row.Status,
		row.RegisteredAt.UTC().Format(time.RFC3339),
		"",
		row.ResponseCount,
		"", "", "",
	}
	if row.CompletedAt != nil {
		cells[5] = row.CompletedAt.UTC().Format(time.RFC3339)
	}
	if s := row.OverallScores; s != nil {
		cells[7], cells[8], cells[9] = s.TotalEmotionScore, s.TotalKnowledgeScore, s.FinalScore
	}
	return cells
}

// BuildResultsWorkbook lays the results report out as one sheet: a header
// row followed by one row per participant.
func BuildResultsWorkbook(report *assessment.ResultsReport) (*excelize.File, error) {
	f := excelize.NewFile()

	idx, err := f.NewSheet(resultsSheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, err
	}

	// Header row
	for i, h := range resultsHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(resultsSheet, cell, h); err != nil {
			f.Close()
			return nil, err
		}
	}

	// Data rows
	for r, row := range report.Results {
		for c, v := range resultRow(row) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(resultsSheet, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}

// WriteResultsWorkbook streams the report as an XLSX file to w.
func WriteResultsWorkbook(w io.Writer, report *assessment.ResultsReport) error {
	f, err := BuildResultsWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}
