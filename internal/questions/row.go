package questions

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Columns is the header of every question source, in order.
var Columns = []string{"question", "type", "options", "correctAnswer", "explanation", "difficulty", "topic"}

// Row is one raw record of a question source, keyed by column.
type Row struct {
	Question      string
	Type          string
	Options       string
	CorrectAnswer string
	Explanation   string
	Difficulty    string
	Topic         string
}

func (r Row) values() []string {
	return []string{r.Question, r.Type, r.Options, r.CorrectAnswer, r.Explanation, r.Difficulty, r.Topic}
}

func (r *Row) set(col int, v string) {
	switch col {
	case 0:
		r.Question = v
	case 1:
		r.Type = v
	case 2:
		r.Options = v
	case 3:
		r.CorrectAnswer = v
	case 4:
		r.Explanation = v
	case 5:
		r.Difficulty = v
	case 6:
		r.Topic = v
	}
}

// headerKey folds a header cell so that "Correct Answer", "correct_answer"
// and "correctAnswer" all match.
func headerKey(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(s)
}

// rowReader streams Rows out of a CSV source with a header line.
type rowReader struct {
	r *csv.Reader
	// colOf maps a record position to a Columns index, -1 for unknown columns.
	colOf     []int
	hasHeader bool
	header    map[int]bool
}

func newRowReader(src io.Reader) (*rowReader, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rr := &rowReader{r: r, header: map[int]bool{}}
	head, err := r.Read()
	if errors.Is(err, io.EOF) {
		return rr, nil
	}
	if err != nil {
		return nil, err
	}

	rr.hasHeader = true
	keys := make(map[string]int, len(Columns))
	for i, c := range Columns {
		keys[headerKey(c)] = i
	}
	rr.colOf = make([]int, len(head))
	for i, h := range head {
		col, ok := keys[headerKey(h)]
		if !ok || rr.header[col] {
			rr.colOf[i] = -1
			continue
		}
		rr.colOf[i] = col
		rr.header[col] = true
	}
	return rr, nil
}

// hasColumn reports whether the header names Columns[col].
func (rr *rowReader) hasColumn(col int) bool {
	return rr.header[col]
}

// next returns the next data row, io.EOF at the end, or a *csv.ParseError
// for a malformed record. Reading may continue after a parse error.
func (rr *rowReader) next() (Row, error) {
	var row Row
	if !rr.hasHeader {
		return row, io.EOF
	}
	rec, err := rr.r.Read()
	if err != nil {
		return row, err
	}
	for i, v := range rec {
		if i < len(rr.colOf) && rr.colOf[i] >= 0 {
			row.set(rr.colOf[i], v)
		}
	}
	return row, nil
}

// FormatRow maps a raw row to a Question. It returns nil when the row has
// no question text. The returned question has no ID and is not validated.
func FormatRow(row Row, subjectID string) *Question {
	text := strings.TrimSpace(row.Question)
	if text == "" {
		return nil
	}

	q := &Question{
		Text:        text,
		Kind:        Kind(strings.ToLower(strings.TrimSpace(row.Type))),
		Difficulty:  Difficulty(strings.ToLower(strings.TrimSpace(row.Difficulty))),
		Topic:       strings.TrimSpace(row.Topic),
		Explanation: strings.TrimSpace(row.Explanation),
		SubjectID:   subjectID,
		Options:     []string{},
	}
	if q.Kind == "" {
		q.Kind = KindMultipleChoice
	}
	if q.Difficulty == "" {
		q.Difficulty = Beginner
	}
	if q.Topic == "" {
		q.Topic = DefaultTopic
	}

	switch {
	case q.Kind.FreeForm():
		// No options and no answer.
	case q.Kind == KindMultipleChoice:
		q.Options = ParseOptions(row.Options)
		q.CorrectAnswer = IndexAnswer(parseIndex(row.CorrectAnswer))
	case q.Kind == KindShortAnswer:
		if a := strings.TrimSpace(row.CorrectAnswer); a != "" {
			q.CorrectAnswer = TextAnswer(a)
		}
	}
	return q
}

// ParseOptions splits a comma-delimited options field. Each value may be
// quoted with embedded quotes doubled. Values are trimmed and empty values
// dropped.
func ParseOptions(field string) []string {
	out := []string{}
	if strings.TrimSpace(field) == "" {
		return out
	}

	r := csv.NewReader(strings.NewReader(field))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()

	var values []string
	if err != nil || len(records) != 1 {
		values = strings.Split(field, ",")
	} else {
		values = records[0]
	}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseIndex reads a leading integer from s, defaulting to 0.
func parseIndex(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
