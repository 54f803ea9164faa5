// Package export writes report runs to CSV and XLSX files.
package export

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/roadsafety/schools-cli/internal/injury"
	"github.com/roadsafety/schools-cli/internal/report"
)

// Format is an output file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", eris.Errorf("export: unsupported format %q (want csv or xlsx)", s)
	}
}

// Options controls WriteFiles.
type Options struct {
	Dir    string
	Format Format
	// Encoding names the CSV text encoding, e.g. "utf-8" or "cp1255".
	Encoding string
}

// WriteFiles writes the report rows and the raw records into opts.Dir and
// returns the paths written. CSV produces one file per table; XLSX produces
// one workbook with a sheet per table.
func WriteFiles(opts Options, rows []injury.ReportRow, raw []injury.MatchedRecord) ([]string, error) {
	switch opts.Format {
	case FormatCSV:
		reportPath := filepath.Join(opts.Dir, report.ReportTable+".csv")
		rawPath := filepath.Join(opts.Dir, report.RawTable+".csv")
		if err := writeCSVFile(reportPath, opts.Encoding, report.ReportColumns, reportRecords(rows)); err != nil {
			return nil, err
		}
		if err := writeCSVFile(rawPath, opts.Encoding, report.RawColumns, rawRecords(raw)); err != nil {
			return nil, err
		}
		return []string{reportPath, rawPath}, nil
	case FormatXLSX:
		path := filepath.Join(opts.Dir, report.ReportTable+".xlsx")
		if err := WriteXLSXFile(path, rows, raw); err != nil {
			return nil, err
		}
		return []string{path}, nil
	default:
		return nil, eris.Errorf("export: unsupported format %q", opts.Format)
	}
}

func reportRecords(rows []injury.ReportRow) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = report.ReportValues(r)
	}
	return out
}

func rawRecords(raw []injury.MatchedRecord) [][]any {
	out := make([][]any, len(raw))
	for i, m := range raw {
		out[i] = report.RawValues(m)
	}
	return out
}

const timestampLayout = "2006-01-02 15:04:05"

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(timestampLayout)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
