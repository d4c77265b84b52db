package questions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRows(t *testing.T) {
	got := EncodeRows([]Row{
		{Question: `Say "hi", then leave`, Type: "essay", Topic: "T"},
	})
	want := "question,type,options,correctAnswer,explanation,difficulty,topic\n" +
		`"Say ""hi"", then leave","essay","","","","","T"`
	assert.Equal(t, want, got)
}

func TestEncodeOptions(t *testing.T) {
	assert.Equal(t, `A,"1,000","say ""x""",B`, EncodeOptions([]string{"A", "1,000", `say "x"`, "B"}))
	assert.Equal(t, []string{"A", "1,000", `say "x"`, "B"}, ParseOptions(EncodeOptions([]string{"A", "1,000", `say "x"`, "B"})))
}

func TestRoundTrip(t *testing.T) {
	im, _ := newTestImporter(t)
	original := []Question{
		{
			Text: `Which of "these", if any, is a comma: ","?`, Kind: KindMultipleChoice,
			Options:       []string{`","`, `"quoted"`, "plain, with comma", "none"},
			CorrectAnswer: IndexAnswer(0), Explanation: `It's the one that says ","`,
			Difficulty: Advanced, Topic: "Punctuation, mostly", SubjectID: "webdev",
		},
		{
			Text: "Which keyword declares a constant?", Kind: KindShortAnswer, Options: []string{},
			CorrectAnswer: TextAnswer(`"final"`), Difficulty: Beginner, Topic: DefaultTopic, SubjectID: "webdev",
		},
		{
			Text: "Describe the event loop,\nthen the call stack.", Kind: KindLongAnswer, Options: []string{},
			Difficulty: Intermediate, Topic: "JavaScript", SubjectID: "webdev",
		},
		{
			Text: "Essay", Kind: KindEssay, Options: []string{}, Explanation: `""`,
			Difficulty: Beginner, Topic: "x", SubjectID: "webdev",
		},
	}

	writeSource(t, im, "webdev_rt.csv", ToRowFormat(original))
	first, err := im.ImportAll("webdev", "webdev_rt.csv")
	require.NoError(t, err)
	assert.Equal(t, original, stripIDs(first))

	writeSource(t, im, "webdev_rt2.csv", ToRowFormat(first))
	second, err := im.ImportAll("webdev", "webdev_rt2.csv")
	require.NoError(t, err)
	assert.Equal(t, stripIDs(first), stripIDs(second))
}

func TestRoundTripSamples(t *testing.T) {
	im, _ := newTestImporter(t)
	for _, subject := range []string{"dsa", "cn", "os", "dbms", "webdev"} {
		_, err := im.CreateSample(subject, subject)
		require.NoError(t, err)

		qs, err := im.ImportAll(subject, SampleSource(subject))
		require.NoError(t, err)

		writeSource(t, im, subject+"_copy.csv", ToRowFormat(qs))
		again, err := im.ImportAll(subject, subject+"_copy.csv")
		require.NoError(t, err)
		assert.Equal(t, stripIDs(qs), stripIDs(again), subject)
	}
}
