package export

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/roadsafety/schools-cli/internal/injury"
	"github.com/roadsafety/schools-cli/internal/report"
)

// WriteXLSXFile saves a workbook with the report and raw sheets to path.
func WriteXLSXFile(path string, rows []injury.ReportRow, raw []injury.MatchedRecord) error {
	f, err := buildWorkbook(rows, raw)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

// WriteXLSX writes the workbook to w.
func WriteXLSX(w io.Writer, rows []injury.ReportRow, raw []injury.MatchedRecord) error {
	f, err := buildWorkbook(rows, raw)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func buildWorkbook(rows []injury.ReportRow, raw []injury.MatchedRecord) (*xlsx.File, error) {
	f := xlsx.NewFile()
	if err := addSheet(f, report.ReportTable, report.ReportColumns, reportRecords(rows)); err != nil {
		return nil, err
	}
	if err := addSheet(f, report.RawTable, report.RawColumns, rawRecords(raw)); err != nil {
		return nil, err
	}
	return f, nil
}

func addSheet(f *xlsx.File, name string, header []string, records [][]any) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", name)
	}

	hr := sheet.AddRow()
	for _, h := range header {
		hr.AddCell().SetString(h)
	}
	for _, rec := range records {
		row := sheet.AddRow()
		for _, v := range rec {
			setCell(row.AddCell(), v)
		}
	}
	return nil
}

func setCell(c *xlsx.Cell, v any) {
	switch x := v.(type) {
	case int:
		c.SetInt(x)
	case int64:
		c.SetInt64(x)
	case float64:
		c.SetFloat(x)
	case time.Time:
		if x.IsZero() {
			return
		}
		c.SetDateTime(x)
	default:
		c.SetString(formatValue(v))
	}
}
