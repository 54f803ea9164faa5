package school

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DBF field names are limited to ten characters, so the directory's
// attribute names appear truncated in shapefile exports.
var shapefileFields = map[string][]string{
	"school_id":   {"school_id", "semel"},
	"school_type": {"school_typ", "school_type"},
	"school_name": {"school_nam", "school_name"},
	"yishuv_name": {"yishuv_nam", "yishuv_name"},
}

// shapeReader is the part of shp.Reader and shp.ZipReader used here.
type shapeReader interface {
	Next() bool
	Shape() (int, shp.Shape)
	Attribute(n int) string
	Fields() []shp.Field
	Err() error
	Close() error
}

// LoadShapefile reads schools from a point shapefile, either a .shp with
// its sidecar files or a .zip holding them. Attribute text is decoded from
// enc (a WHATWG encoding label, empty for UTF-8). Point geometry is read as
// x=longitude, y=latitude; non-point shapes are skipped.
func LoadShapefile(path, enc string) ([]School, error) {
	var (
		reader shapeReader
		err    error
	)
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		reader, err = shp.OpenZip(path)
	} else {
		reader, err = shp.Open(path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "school: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	decoder, err := attributeDecoder(enc)
	if err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(shapefileFields))
	for col, names := range shapefileFields {
		i := fieldIndex(reader.Fields(), names)
		if i < 0 {
			return nil, eris.Errorf("school: shapefile missing field %q", col)
		}
		idx[col] = i
	}

	attr := func(col string) (string, error) {
		raw := strings.Trim(reader.Attribute(idx[col]), " \x00")
		if decoder == nil {
			return raw, nil
		}
		s, err := decoder.String(raw)
		if err != nil {
			return "", eris.Wrapf(err, "school: decode %s", col)
		}
		return strings.TrimSpace(s), nil
	}

	var (
		schools []School
		skipped int
	)
	for reader.Next() {
		row, shape := reader.Shape()
		pt, ok := shape.(*shp.Point)
		if !ok {
			skipped++
			continue
		}

		var s School
		idText, err := attr("school_id")
		if err != nil {
			return nil, err
		}
		s.ID, err = strconv.ParseInt(idText, 10, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "school: shapefile row %d: school_id", row)
		}
		if s.Category, err = attr("school_type"); err != nil {
			return nil, err
		}
		if s.Name, err = attr("school_name"); err != nil {
			return nil, err
		}
		if s.Municipality, err = attr("yishuv_name"); err != nil {
			return nil, err
		}
		s.Longitude, s.Latitude = pt.X, pt.Y
		schools = append(schools, s)
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "school: read shapefile %s", path)
	}

	if skipped > 0 {
		zap.L().With(zap.String("component", "school.shapefile")).
			Warn("skipped non-point shapes", zap.String("path", path), zap.Int("skipped", skipped))
	}
	return schools, nil
}

func attributeDecoder(enc string) (*encoding.Decoder, error) {
	switch strings.ToLower(enc) {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	e, err := htmlindex.Get(enc)
	if err != nil {
		return nil, eris.Wrapf(err, "school: unknown encoding %q", enc)
	}
	return e.NewDecoder(), nil
}

// fieldIndex returns the index of the first field matching one of names,
// or -1.
func fieldIndex(fields []shp.Field, names []string) int {
	for _, name := range names {
		for i, f := range fields {
			if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
				return i
			}
		}
	}
	return -1
}
