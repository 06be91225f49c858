package submissions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhowell/gradesplit/pkg/core/model"
)

const gradebook = `First Name,Last Name,SID,Email,Sections,Submission ID,Status
Alice,Smith,1,alice@example.com,A,100,Graded
Bob,Jones,2,bob@example.com,A,200,Ungraded
Carol,,3,carol@example.com,A,200,Ungraded
Dan,Brown,4,dan@example.com,B,300,Missing
Erin,White,5,erin@example.com,B,400,Graded
John,Doe,6,john@example.com,B,400,Graded
Frank,Green,7,frank@example.com,B,500,Graded
`

func TestParse_GroupsBySubmissionID(t *testing.T) {
	items, err := Parse(strings.NewReader(gradebook), nil)
	require.NoError(t, err)

	assert.Equal(t, []model.Item{
		{SubmissionID: "100", Members: []string{"Alice Smith"}},
		{SubmissionID: "200", Members: []string{"Bob Jones", "Carol"}},
		{SubmissionID: "400", Members: []string{"Erin White", "John Doe"}},
		{SubmissionID: "500", Members: []string{"Frank Green"}},
	}, items)
}

func TestParse_ExcludesInstructors(t *testing.T) {
	// Instructor names match case-insensitively
	items, err := Parse(strings.NewReader(gradebook), []string{"JOHN DOE", "frank green"})
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, model.Item{SubmissionID: "400", Members: []string{"Erin White"}}, items[2])
	assert.Equal(t, model.CategorySolo, items[2].Category())
}

func TestParse_ExcludesInstructorsIgnoringSpacing(t *testing.T) {
	items, err := Parse(strings.NewReader(gradebook), []string{"  John   Doe ", "Frank\tGreen"})
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, []string{"Erin White"}, items[2].Members)
}

func TestParse_SkipsMissing(t *testing.T) {
	items, err := Parse(strings.NewReader(gradebook), nil)
	require.NoError(t, err)

	for _, item := range items {
		assert.NotEqual(t, "300", item.SubmissionID)
	}
}

func TestParse_MissingColumn(t *testing.T) {
	input := "First Name,Last Name,Status\nAlice,Smith,Graded\n"

	_, err := Parse(strings.NewReader(input), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column in header: Submission ID")
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no header row found")
}

func TestParse_HeaderOnly(t *testing.T) {
	items, err := Parse(strings.NewReader("First Name,Last Name,Submission ID,Status\n"), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestParse_BlankSubmissionID(t *testing.T) {
	input := "First Name,Last Name,Submission ID,Status\nAlice,Smith,,Graded\n"

	_, err := Parse(strings.NewReader(input), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "row 2 has no Submission ID")
}

func TestParse_ByteOrderMark(t *testing.T) {
	input := "\ufeffFirst Name,Last Name,Submission ID,Status\nAlice,Smith,1,Graded\n"

	items, err := Parse(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"Alice Smith"}, items[0].Members)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submissions.csv")
	require.NoError(t, os.WriteFile(path, []byte(gradebook), 0644))

	items, err := NewReader().LoadSubmissions(path, []string{"John Doe"})
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open submissions file")
}
