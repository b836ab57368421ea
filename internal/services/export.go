package services

import (
	"bytes"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"alfredoptarigan/resume-screener/internal/models"
)

const (
	candidatesSheet = "Candidates"
	errorsSheet     = "Errors"
)

var candidateHeaders = []string{
	"Rank", "Filename", "Name", "Aggregate Score", "Technical", "Soft Skills", "Experience & Align",
	"Red Flags", "Salary Range", "Culture Fit", "Consistency", "Justification",
}

var errorHeaders = []string{"Filename", "Error Kind", "Error"}

type ReportExporter interface {
	ExportBatch(items []models.BatchItem) (*bytes.Buffer, error)
}

type xlsxExporter struct{}

func NewReportExporter() ReportExporter {
	return xlsxExporter{}
}

// RankOrder returns item indexes: scored items by fit score, highest first,
// followed by failed items in input order.
func RankOrder(items []models.BatchItem) []int {
	var scored, failed []int
	for i, item := range items {
		if item.Failed() {
			failed = append(failed, i)
			continue
		}
		scored = append(scored, i)
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return items[scored[a]].Score.FitScore > items[scored[b]].Score.FitScore
	})
	return append(scored, failed...)
}

// RankItems returns the items in RankOrder.
func RankItems(items []models.BatchItem) []models.BatchItem {
	ranked := make([]models.BatchItem, 0, len(items))
	for _, i := range RankOrder(items) {
		ranked = append(ranked, items[i])
	}
	return ranked
}

func (x xlsxExporter) ExportBatch(items []models.BatchItem) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("failed to close xlsx file")
		}
	}()

	// NewFile starts with Sheet1
	if err := f.SetSheetName("Sheet1", candidatesSheet); err != nil {
		return nil, errors.Wrap(err, "failed to rename sheet")
	}
	if _, err := f.NewSheet(errorsSheet); err != nil {
		return nil, errors.Wrap(err, "failed to create errors sheet")
	}

	if err := writeHeader(f, candidatesSheet, candidateHeaders); err != nil {
		return nil, errors.Wrap(err, "failed to write candidates header")
	}
	if err := writeHeader(f, errorsSheet, errorHeaders); err != nil {
		return nil, errors.Wrap(err, "failed to write errors header")
	}

	candidateRow, errorRow := 1, 1
	for _, item := range RankItems(items) {
		if item.Failed() {
			errorRow++
			if err := writeRow(f, errorsSheet, errorRow, []interface{}{item.Filename, string(item.ErrorKind), item.Error}); err != nil {
				return nil, errors.Wrap(err, "failed to write error row")
			}
			continue
		}

		candidateRow++
		s := item.Score
		row := []interface{}{
			candidateRow - 1, item.Filename, s.Name, s.FitScore, s.TechnicalScore, s.SoftSkillsScore,
			s.ExperienceScore, strings.Join(s.RedFlags, "; "), s.SalaryRange, s.CultureFitNote,
			s.ConsistencyNotes, s.Justification,
		}
		if err := writeRow(f, candidatesSheet, candidateRow, row); err != nil {
			return nil, errors.Wrap(err, "failed to write candidate row")
		}
	}

	return f.WriteToBuffer()
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return err
	}

	lastCell, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCell, style); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 22)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
