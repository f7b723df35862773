package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-gradebook/internal/domain"
)

func TestReadCSV_NamespacesColumns(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("id,name\n1,Ann\n2,Bob\n"), domain.TableStudents, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"students_id", "students_name"}, tbl.Columns)
	assert.Equal(t, [][]string{{"1", "Ann"}, {"2", "Bob"}}, tbl.Rows)
	assert.Equal(t, 2, tbl.Len())

	i, ok := tbl.ColumnIndex("students_name")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestReadCSV_MarksKeepBarePrefix(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("test_id,student_id,mark\n1,1,90\n"), domain.TableMarks, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"_test_id", "_student_id", "_mark"}, tbl.Columns)
}

func TestReadCSV_TrimsAndStripsBOM(t *testing.T) {
	input := "\ufeffid , name\n 1 ,  Ann  \n"
	tbl, err := ReadCSV(strings.NewReader(input), domain.TableStudents, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"students_id", "students_name"}, tbl.Columns)
	assert.Equal(t, [][]string{{"1", "Ann"}}, tbl.Rows)
}

func TestReadCSV_Delimiter(t *testing.T) {
	opts := DefaultOptions()
	opts.Delimiter = ';'
	tbl, err := ReadCSV(strings.NewReader("id;name;teacher\n1;Algo;A\n"), domain.TableCourses, opts)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "Algo", "A"}}, tbl.Rows)
}

func TestReadCSV_IncompleteRows(t *testing.T) {
	input := "id,name\n1,Ann\n2,\n3,Cy\n"

	t.Run("dropped by default", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader(input), domain.TableStudents, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, 2, tbl.Len())
		assert.Equal(t, 1, tbl.Dropped)
	})

	t.Run("kept when disabled", func(t *testing.T) {
		opts := DefaultOptions()
		opts.DropIncomplete = false
		tbl, err := ReadCSV(strings.NewReader(input), domain.TableStudents, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, tbl.Len())
		assert.Zero(t, tbl.Dropped)
	})
}

func TestReadCSV_SkipsBlankLines(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("id,name\n\n1,Ann\n\n"), domain.TableStudents, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("id,name\n"), domain.TableStudents, DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, tbl.Len())
}

func TestReadCSV_SchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "duplicate column", input: "id,id\n1,2\n"},
		{name: "short row", input: "id,name\n1\n"},
		{name: "long row", input: "id,name\n1,Ann,extra\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), domain.TableStudents, DefaultOptions())
			require.Error(t, err)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "schema", verr.Rule)
			assert.Equal(t, domain.TableStudents, verr.Table)
		})
	}
}
