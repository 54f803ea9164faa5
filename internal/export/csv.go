package export

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/roadsafety/schools-cli/internal/injury"
	"github.com/roadsafety/schools-cli/internal/report"
)

// DefaultEncoding is the CSV encoding spreadsheet users in Israel expect.
const DefaultEncoding = "cp1255"

// WriteReportCSV writes report rows with a header line.
func WriteReportCSV(w io.Writer, enc string, rows []injury.ReportRow) error {
	return writeCSV(w, enc, report.ReportColumns, reportRecords(rows))
}

// WriteRawCSV writes raw matched records with a header line.
func WriteRawCSV(w io.Writer, enc string, raw []injury.MatchedRecord) error {
	return writeCSV(w, enc, report.RawColumns, rawRecords(raw))
}

func writeCSVFile(path, enc string, header []string, records [][]any) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	bw := bufio.NewWriter(f)
	if err := writeCSV(bw, enc, header, records); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return eris.Wrapf(err, "export: flush %s", path)
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

func writeCSV(w io.Writer, enc string, header []string, records [][]any) error {
	ew, err := encodedWriter(w, enc)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(ew)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	line := make([]string, len(header))
	for i, rec := range records {
		for j, v := range rec {
			line[j] = formatValue(v)
		}
		if err := cw.Write(line); err != nil {
			return eris.Wrapf(err, "export: write record %d", i)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return eris.Wrap(ew.Close(), "export: flush encoder")
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// encodedWriter wraps w to transcode UTF-8 into the named encoding.
// Characters the encoding cannot represent are replaced. Close flushes the
// encoder without closing w.
func encodedWriter(w io.Writer, name string) (io.WriteCloser, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "utf-8" || name == "utf8" {
		return nopCloser{w}, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, eris.Wrapf(err, "export: unsupported encoding %q", name)
	}
	return transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder())), nil
}
