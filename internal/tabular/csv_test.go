package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_PreservesOrder(t *testing.T) {
	tbl, err := ParseCSV([]byte("a,b\n1,2\n3,4\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Columns)
	assert.Equal(t, []map[string]string{
		{"a": "1", "b": "2"},
		{"a": "3", "b": "4"},
	}, tbl.Rows)
}

func TestParseCSV_ColumnOrderIsSourceOrder(t *testing.T) {
	tbl, err := ParseCSV([]byte("zeta,alpha,mid\nz,a,m\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, tbl.Columns)
	assert.Equal(t, []string{"z", "a", "m"}, tbl.Cells(0))
}

func TestParseCSV_QuotedFieldsAndBOM(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,note\n\"Doe, Jane\",\"said \"\"hi\"\"\"\n")...)
	tbl, err := ParseCSV(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "note"}, tbl.Columns)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Doe, Jane", tbl.Rows[0]["name"])
	assert.Equal(t, `said "hi"`, tbl.Rows[0]["note"])
}

func TestParseCSV_PreservesWhitespace(t *testing.T) {
	tbl, err := ParseCSV([]byte("a, b\n  1, x\n3,4 \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", " b"}, tbl.Columns)
	assert.Equal(t, []map[string]string{
		{"a": "  1", " b": " x"},
		{"a": "3", " b": "4 "},
	}, tbl.Rows)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	tbl, err := ParseCSV([]byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Columns)
	assert.Empty(t, tbl.Rows)
}

func TestParseCSV_Malformed(t *testing.T) {
	tests := map[string]string{
		"empty":            "",
		"whitespace":       "  \n\n",
		"ragged row":       "a,b\n1,2,3\n",
		"short row":        "a,b\n1\n",
		"duplicate header": "a,a\n1,2\n",
		"blank header":     "a,,c\n1,2,3\n",
		"spaces header":    "a, ,c\n1,2,3\n",
		"bare quote":       "a,b\n\"1,2\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCSV([]byte(in))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestTable_CellsOutOfRange(t *testing.T) {
	tbl := Table{Columns: []string{"a"}, Rows: []map[string]string{{"a": "1"}}}
	assert.Nil(t, tbl.Cells(1))
	assert.Nil(t, tbl.Cells(-1))
}
