package questions

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRow(t *testing.T) {
	one := 1
	tests := []struct {
		name string
		row  Row
		want *Question
	}{
		{
			name: "multiple choice",
			row:  Row{Question: "Pick", Type: "multiple-choice", Options: "A,B,C", CorrectAnswer: "1"},
			want: &Question{
				Text: "Pick", Kind: KindMultipleChoice, Options: []string{"A", "B", "C"},
				CorrectAnswer: Answer{Index: &one}, Difficulty: Beginner, Topic: DefaultTopic, SubjectID: "dsa",
			},
		},
		{
			name: "defaults",
			row:  Row{Question: "  Spaces  ", Options: " A , ,B ", CorrectAnswer: "x"},
			want: &Question{
				Text: "Spaces", Kind: KindMultipleChoice, Options: []string{"A", "B"},
				CorrectAnswer: IndexAnswer(0), Difficulty: Beginner, Topic: DefaultTopic, SubjectID: "dsa",
			},
		},
		{
			name: "essay drops options and answer",
			row: Row{
				Question: "Explain", Type: "Essay", Options: "A,B", CorrectAnswer: "1",
				Explanation: " why ", Difficulty: "Intermediate", Topic: " Deadlocks ",
			},
			want: &Question{
				Text: "Explain", Kind: KindEssay, Options: []string{}, Explanation: "why",
				Difficulty: Intermediate, Topic: "Deadlocks", SubjectID: "dsa",
			},
		},
		{
			name: "long answer",
			row:  Row{Question: "Compare", Type: "long-answer", CorrectAnswer: "ignored"},
			want: &Question{
				Text: "Compare", Kind: KindLongAnswer, Options: []string{},
				Difficulty: Beginner, Topic: DefaultTopic, SubjectID: "dsa",
			},
		},
		{
			name: "short answer keeps text",
			row:  Row{Question: "Keyword?", Type: "short-answer", CorrectAnswer: " final "},
			want: &Question{
				Text: "Keyword?", Kind: KindShortAnswer, Options: []string{}, CorrectAnswer: TextAnswer("final"),
				Difficulty: Beginner, Topic: DefaultTopic, SubjectID: "dsa",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRow(tt.row, "dsa"))
		})
	}
}

func TestFormatRowEmptyQuestion(t *testing.T) {
	assert.Nil(t, FormatRow(Row{Question: "", Type: "essay"}, "dsa"))
	assert.Nil(t, FormatRow(Row{Question: "   \t"}, "dsa"))
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"A,B,C", []string{"A", "B", "C"}},
		{"O(1),O(log n),O(n),O(n²)", []string{"O(1)", "O(log n)", "O(n)", "O(n²)"}},
		{`"1,000",2`, []string{"1,000", "2"}},
		{`"say ""hi""", plain`, []string{`say "hi"`, "plain"}},
		{",,A,,", []string{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOptions(tt.in))
		})
	}
}

func TestParseIndex(t *testing.T) {
	tests := map[string]int{
		"":    0,
		"2":   2,
		" 3 ": 3,
		"1st": 1,
		"-1":  -1,
		"abc": 0,
		"+":   0,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseIndex(in), "parseIndex(%q)", in)
	}
}

func TestRowReaderHeaderAliases(t *testing.T) {
	src := "\ufeffQuestion,Correct Answer,extra,TYPE\nQ1,2,zzz,essay\n"
	rr, err := newRowReader(strings.NewReader(src))
	require.NoError(t, err)
	assert.True(t, rr.hasColumn(0))

	row, err := rr.next()
	require.NoError(t, err)
	assert.Equal(t, Row{Question: "Q1", CorrectAnswer: "2", Type: "essay"}, row)
}

func TestRowReaderEmptySource(t *testing.T) {
	rr, err := newRowReader(strings.NewReader(""))
	require.NoError(t, err)
	_, err = rr.next()
	assert.ErrorIs(t, err, io.EOF)
}
