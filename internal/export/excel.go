// Package export renders dashboard data as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/target/interview-ui/internal/domain/model"
)

// ContentType is the MIME type of the produced workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	headerFill = "4472C4"
	linkColor  = "0563C1"
)

// LinkBuilder turns an assessment token into the URL shared with the candidate.
type LinkBuilder func(token string) string

// BatchLinks writes one row per generated assessment link.
func BatchLinks(w io.Writer, jobDescription string, links []model.AssessmentLink, link LinkBuilder, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Assessments"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 80); err != nil {
		return err
	}

	summary := [][]any{
		{"Job Description", firstLine(jobDescription)},
		{"Generated", now.UTC().Format("2006-01-02 15:04:05 UTC")},
		{"Assessments", len(links)},
	}
	for i, row := range summary {
		if err := setRow(f, sheet, i+1, row); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(1, i+1), cell(1, i+1), styles.label); err != nil {
			return err
		}
	}

	const headerRow = 5
	if err := writeHeader(f, sheet, headerRow, styles.header, "Resume", "Assessment Link"); err != nil {
		return err
	}
	for i, l := range links {
		row := headerRow + 1 + i
		url := link(l.Token)
		if err := setRow(f, sheet, row, []any{l.Filename, url}); err != nil {
			return err
		}
		if err := f.SetCellHyperLink(sheet, cell(2, row), url, "External"); err != nil {
			return fmt.Errorf("link row %d: %w", row, err)
		}
		if err := f.SetCellStyle(sheet, cell(2, row), cell(2, row), styles.link); err != nil {
			return err
		}
	}
	return write(f, w)
}

// AdminLogs writes a metrics summary sheet and one page of agent call logs.
func AdminLogs(w io.Writer, metrics model.LogMetrics, page model.LogPage) error {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet, logSheet = "Summary", "Logs"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(logSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return err
	}
	summary := [][]any{
		{"Total Calls", metrics.TotalCalls},
		{"Total Input Tokens", metrics.TotalInputTokens},
		{"Total Output Tokens", metrics.TotalOutputTokens},
		{"Avg Response Time (ms)", metrics.AvgResponseTimeMS},
		{"Page", fmt.Sprintf("%d of %d", page.Page, page.TotalPages)},
	}
	for i, row := range summary {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
		if err := f.SetCellStyle(summarySheet, cell(1, i+1), cell(1, i+1), styles.label); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(logSheet, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(logSheet, "B", "E", 16); err != nil {
		return err
	}
	if err := writeHeader(f, logSheet, 1, styles.header,
		"Timestamp", "Agent", "Input Tokens", "Output Tokens", "Response Time (ms)"); err != nil {
		return err
	}
	for i, e := range page.Logs {
		ts := ""
		if !e.Timestamp.IsZero() {
			ts = e.Timestamp.UTC().Format(time.RFC3339)
		}
		if err := setRow(f, logSheet, i+2, []any{ts, e.AgentName, e.InputTokens, e.OutputTokens, e.ResponseTimeMS}); err != nil {
			return err
		}
	}
	if err := f.SetPanes(logSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	return write(f, w)
}

type sheetStyles struct {
	header int
	label  int
	link   int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}
	s.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return s, fmt.Errorf("label style: %w", err)
	}
	s.link, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: linkColor, Underline: "single"}})
	if err != nil {
		return s, fmt.Errorf("link style: %w", err)
	}
	return s, nil
}

func writeHeader(f *excelize.File, sheet string, row, style int, titles ...string) error {
	vals := make([]any, len(titles))
	for i, t := range titles {
		vals[i] = t
	}
	if err := setRow(f, sheet, row, vals); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell(1, row), cell(len(titles), row), style)
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	if err := f.SetSheetRow(sheet, cell(1, row), &vals); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}

// cell panics only on non-positive coordinates, which callers never pass.
func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(err)
	}
	return name
}

func write(f *excelize.File, w io.Writer) error {
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
