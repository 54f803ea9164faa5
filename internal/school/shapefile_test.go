package school

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

type shapeRow struct {
	shape                 shp.Shape
	id, typ, name, yishuv string
}

func writeShapefile(t *testing.T, rows []shapeRow, encode func(string) string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schools.shp")

	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.NumberField("school_id", 10),
		shp.StringField("school_typ", 40),
		shp.StringField("school_nam", 80),
		shp.StringField("yishuv_nam", 60),
	}))
	for _, r := range rows {
		n := int(w.Write(r.shape))
		require.NoError(t, w.WriteAttribute(n, 0, r.id))
		require.NoError(t, w.WriteAttribute(n, 1, encode(r.typ)))
		require.NoError(t, w.WriteAttribute(n, 2, encode(r.name)))
		require.NoError(t, w.WriteAttribute(n, 3, encode(r.yishuv)))
	}
	w.Close()
	return path
}

func identity(s string) string { return s }

func TestLoadShapefile(t *testing.T) {
	path := writeShapefile(t, []shapeRow{
		{&shp.Point{X: 34.8, Y: 32.0}, "1", CategoryGeneralSchool, "הרצל", "חולון"},
		{&shp.Point{X: 35.0, Y: 32.8}, "2", CategoryKindergarten, "שקד", "חיפה"},
	}, identity)

	schools, err := LoadShapefile(path, "utf-8")
	require.NoError(t, err)
	require.Len(t, schools, 2)

	assert.Equal(t, School{
		ID:           1,
		Category:     CategoryGeneralSchool,
		Name:         "הרצל",
		Municipality: "חולון",
		Latitude:     32.0,
		Longitude:    34.8,
	}, schools[0])
	assert.Equal(t, int64(2), schools[1].ID)
	assert.Equal(t, "חיפה", schools[1].Municipality)
}

func TestLoadShapefile_Windows1255(t *testing.T) {
	enc := charmap.Windows1255.NewEncoder()
	encode := func(s string) string {
		out, err := enc.String(s)
		require.NoError(t, err)
		return out
	}
	path := writeShapefile(t, []shapeRow{
		{&shp.Point{X: 34.8, Y: 32.0}, "7", CategoryKindergarten, "רימון", "אשדוד"},
	}, encode)

	schools, err := LoadShapefile(path, "cp1255")
	require.NoError(t, err)
	require.Len(t, schools, 1)
	assert.Equal(t, CategoryKindergarten, schools[0].Category)
	assert.Equal(t, "רימון", schools[0].Name)
	assert.Equal(t, "אשדוד", schools[0].Municipality)
}

func TestLoadShapefile_UnknownEncoding(t *testing.T) {
	path := writeShapefile(t, []shapeRow{
		{&shp.Point{X: 34.8, Y: 32.0}, "1", CategoryGeneralSchool, "a", "b"},
	}, identity)

	_, err := LoadShapefile(path, "no-such-encoding")
	assert.Error(t, err)
}

func TestLoadShapefile_MissingFile(t *testing.T) {
	_, err := LoadShapefile(filepath.Join(t.TempDir(), "none.shp"), "")
	assert.Error(t, err)
}

func TestLoadShapefile_MissingField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.shp")
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.NumberField("school_id", 10)}))
	w.Write(&shp.Point{X: 1, Y: 1})
	w.Close()

	_, err = LoadShapefile(path, "")
	assert.ErrorContains(t, err, "missing field")
}
