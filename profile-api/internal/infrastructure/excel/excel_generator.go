package excel

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/ports"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
	"github.com/fernsky/digital-profile/profile-api/internal/stats"
)

const (
	titleRow  = 1
	headerRow = 5
	firstData = headerRow + 1
)

type ExcelGeneratorImpl struct {
	creator string
	logger  logger.Logger
}

func NewExcelGeneratorImpl(creator string, log logger.Logger) *ExcelGeneratorImpl {
	return &ExcelGeneratorImpl{
		creator: creator,
		logger:  logger.ForComponent(log, "excel_generator"),
	}
}

// GenerateSummaryReport writes the table, a native bar chart, the scalar
// totals and the narrative of one presentation into a workbook.
func (e *ExcelGeneratorImpl) GenerateSummaryReport(ctx context.Context, p *stats.Presentation, text ports.ReportText, generatedAt time.Time) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.logger.Infof("Generating %s report (%s) with %d rows", p.Dataset, p.Locale, len(p.Table.Rows))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       p.Title,
		Subject:     p.Dataset,
		Creator:     e.creator,
		Description: p.Description,
		Language:    p.Locale,
		Created:     generatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("failed to set doc props: %w", err)
	}

	summary := sheetName(text.SummarySheet, "Summary")
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := e.createSummarySheet(f, summary, p, text); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := e.createTotalsSheet(f, sheetName(text.TotalsSheet, "Totals"), p); err != nil {
		return nil, fmt.Errorf("failed to create totals sheet: %w", err)
	}
	if err := e.createNarrativeSheet(f, sheetName(text.NarrativeSheet, "Narrative"), p); err != nil {
		return nil, fmt.Errorf("failed to create narrative sheet: %w", err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *ExcelGeneratorImpl) createSummarySheet(f *excelize.File, sheet string, p *stats.Presentation, text ports.ReportText) error {
	cols := len(p.Table.Columns)
	if cols == 0 {
		cols = 1
	}
	lastColumn := e.colLetter(cols)

	f.SetCellValue(sheet, "A1", p.Title)
	f.MergeCell(sheet, "A1", fmt.Sprintf("%s%d", lastColumn, titleRow))
	f.SetCellValue(sheet, "A2", p.Description)
	f.MergeCell(sheet, "A2", lastColumn+"2")
	f.SetCellValue(sheet, "A3", text.GeneratedAt)
	f.MergeCell(sheet, "A3", lastColumn+"3")

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "#4F81BD", Style: 1}},
	})
	if err != nil {
		return err
	}

	for i, header := range p.Table.Columns {
		f.SetCellValue(sheet, e.cell(i+1, headerRow), header)
	}
	if len(p.Table.Columns) > 0 {
		f.SetCellStyle(sheet, e.cell(1, headerRow), e.cell(len(p.Table.Columns), headerRow), headerStyle)
	}

	for r, row := range p.Table.Rows {
		for c, value := range row {
			f.SetCellValue(sheet, e.cell(c+1, firstData+r), value)
		}
	}

	for i := 1; i <= cols; i++ {
		width := 16.0
		if i == 1 {
			width = 22.0
		}
		f.SetColWidth(sheet, e.colLetter(i), e.colLetter(i), width)
	}

	if len(p.Chart) == 0 {
		return nil
	}
	return e.addChart(f, sheet, p, cols+2)
}

// addChart writes the numeric chart series next to the table, where the
// chart can reference it, and anchors a clustered column chart below.
func (e *ExcelGeneratorImpl) addChart(f *excelize.File, sheet string, p *stats.Presentation, dataCol int) error {
	labelCol, valueCol := e.colLetter(dataCol), e.colLetter(dataCol+1)
	f.SetCellValue(sheet, e.cell(dataCol, headerRow), "label")
	f.SetCellValue(sheet, e.cell(dataCol+1, headerRow), "value")
	for i, pt := range p.Chart {
		f.SetCellValue(sheet, e.cell(dataCol, firstData+i), pt.Label)
		f.SetCellValue(sheet, e.cell(dataCol+1, firstData+i), pt.Value)
	}
	last := firstData + len(p.Chart) - 1

	ref := func(col string) string {
		return fmt.Sprintf("'%s'!$%s$%d:$%s$%d", sheet, col, firstData, col, last)
	}

	anchor := e.cell(1, firstData+len(p.Table.Rows)+2)
	err := f.AddChart(sheet, anchor, &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       p.Title,
			Categories: ref(labelCol),
			Values:     ref(valueCol),
		}},
		Title:  []excelize.RichTextRun{{Text: p.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{
			Width:  640,
			Height: 320,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}
	return nil
}

func (e *ExcelGeneratorImpl) createTotalsSheet(f *excelize.File, sheet string, p *stats.Presentation) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for i, s := range p.Scalars {
		row := i + 1
		f.SetCellValue(sheet, e.cell(1, row), s.Label)
		f.SetCellValue(sheet, e.cell(2, row), s.Value)
		f.SetCellValue(sheet, e.cell(3, row), s.Display)
	}
	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "C", 18)
	return nil
}

func (e *ExcelGeneratorImpl) createNarrativeSheet(f *excelize.File, sheet string, p *stats.Presentation) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return err
	}
	for i, line := range p.Narrative {
		f.SetCellValue(sheet, e.cell(1, i+1), line)
	}
	if n := len(p.Narrative); n > 0 {
		f.SetCellStyle(sheet, "A1", e.cell(1, n), wrap)
	}
	f.SetColWidth(sheet, "A", "A", 100)
	return nil
}

func (e *ExcelGeneratorImpl) cell(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	return cell
}

func (e *ExcelGeneratorImpl) colLetter(col int) string {
	letter, _ := excelize.ColumnNumberToName(col)
	return letter
}

func sheetName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	if r := []rune(name); len(r) > 31 {
		return string(r[:31])
	}
	return name
}
