package questions

import (
	"strconv"
	"strings"
)

// EncodeRows renders rows as a question source: the header line followed by
// one line per row, every field quoted with embedded quotes doubled. Lines are
// joined by "\n" with no trailing newline.
func EncodeRows(rows []Row) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(Columns, ","))
	for _, r := range rows {
		vals := r.values()
		for i, v := range vals {
			vals[i] = quote(v)
		}
		lines = append(lines, strings.Join(vals, ","))
	}
	return strings.Join(lines, "\n")
}

// ToRowFormat renders questions as a question source that imports back to
// the same questions, IDs aside.
func ToRowFormat(questions []Question) string {
	rows := make([]Row, len(questions))
	for i, q := range questions {
		rows[i] = RowFromQuestion(q)
	}
	return EncodeRows(rows)
}

// RowFromQuestion is the inverse of FormatRow.
func RowFromQuestion(q Question) Row {
	row := Row{
		Question:    q.Text,
		Type:        string(q.Kind),
		Explanation: q.Explanation,
		Difficulty:  string(q.Difficulty),
		Topic:       q.Topic,
	}
	if len(q.Options) > 0 {
		row.Options = EncodeOptions(q.Options)
	}
	switch {
	case q.CorrectAnswer.Index != nil:
		row.CorrectAnswer = strconv.Itoa(*q.CorrectAnswer.Index)
	case q.CorrectAnswer.Text != nil:
		row.CorrectAnswer = *q.CorrectAnswer.Text
	}
	return row
}

// EncodeOptions joins options with commas, quoting the ones that contain a
// delimiter, a quote or a line break.
func EncodeOptions(options []string) string {
	parts := make([]string, len(options))
	for i, o := range options {
		if strings.ContainsAny(o, ",\"\r\n") {
			o = quote(o)
		}
		parts[i] = o
	}
	return strings.Join(parts, ",")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
