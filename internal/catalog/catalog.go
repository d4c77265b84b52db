// Package catalog holds the builtin tests a learner can take.
package catalog

import (
	"fmt"
	"slices"

	"github.com/abhisek/learnforge/internal/questions"
)

// Test is an ordered set of questions taken in one sitting.
type Test struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Topic       string               `json:"topic"`
	Questions   []questions.Question `json:"questions"`
}

// FromQuestions builds a test from imported questions.
func FromQuestions(id, title, topic string, qs []questions.Question) Test {
	return Test{ID: id, Title: title, Topic: topic, Questions: slices.Clone(qs)}
}

func mc(testID string, n int, text string, options []string, correct string) questions.Question {
	idx := slices.Index(options, correct)
	if idx < 0 {
		panic(fmt.Sprintf("catalog: %s/%d: %q is not an option", testID, n, correct))
	}
	return questions.Question{
		ID:            fmt.Sprintf("%s/%d", testID, n),
		Text:          text,
		Kind:          questions.KindMultipleChoice,
		Options:       options,
		CorrectAnswer: questions.IndexAnswer(idx),
		Difficulty:    questions.Beginner,
		Topic:         questions.DefaultTopic,
		SubjectID:     testID,
	}
}

func written(testID string, n int, kind questions.Kind, text, reference string) questions.Question {
	q := questions.Question{
		ID:         fmt.Sprintf("%s/%d", testID, n),
		Text:       text,
		Kind:       kind,
		Options:    []string{},
		Difficulty: questions.Beginner,
		Topic:      questions.DefaultTopic,
		SubjectID:  testID,
	}
	if kind.FreeForm() {
		// The model answer becomes the explanation.
		q.Explanation = reference
	} else {
		q.CorrectAnswer = questions.TextAnswer(reference)
	}
	return q
}

func withDifficulty(d questions.Difficulty, qs ...questions.Question) []questions.Question {
	for i := range qs {
		qs[i].Difficulty = d
	}
	return qs
}

var builtin = map[string]Test{
	"java-fundamentals": {
		ID:          "java-fundamentals",
		Title:       "Java Fundamentals Quiz",
		Description: "Test your knowledge of basic Java syntax, variables, and data types.",
		Topic:       "Java Programming",
		Questions: withDifficulty(questions.Beginner,
			mc("java-fundamentals", 1,
				"Which of the following is the correct way to declare an integer variable in Java?",
				[]string{"int x = 10;", "integer x = 10;", "Int x = 10;", "var x = 10;"},
				"int x = 10;"),
			mc("java-fundamentals", 2,
				"What is the default value of a boolean variable in Java?",
				[]string{"true", "false", "null", "0"},
				"false"),
			written("java-fundamentals", 3, questions.KindShortAnswer,
				"What keyword is used to create a constant in Java?",
				"final"),
			mc("java-fundamentals", 4,
				"Which operator is used for string concatenation in Java?",
				[]string{"+", "&", "||", "++"},
				"+"),
			written("java-fundamentals", 5, questions.KindLongAnswer,
				"Explain the difference between == and .equals() method in Java when comparing strings.",
				"== compares object references while .equals() compares the actual content of strings. For string comparison, .equals() should be used to compare values."),
		),
	},
	"oop-concepts": {
		ID:          "oop-concepts",
		Title:       "Object-Oriented Programming Test",
		Description: "Comprehensive test on OOP concepts including inheritance, polymorphism, and encapsulation.",
		Topic:       "Object-Oriented Programming",
		Questions: withDifficulty(questions.Intermediate,
			mc("oop-concepts", 1,
				"Which principle of OOP allows a class to inherit properties from another class?",
				[]string{"Encapsulation", "Inheritance", "Polymorphism", "Abstraction"},
				"Inheritance"),
			mc("oop-concepts", 2,
				"What is method overriding?",
				[]string{
					"Creating multiple methods with same name but different parameters",
					"Redefining a method in a subclass that already exists in the parent class",
					"Hiding a method from the parent class",
					"Creating a new method in a class",
				},
				"Redefining a method in a subclass that already exists in the parent class"),
			written("oop-concepts", 3, questions.KindLongAnswer,
				"Explain the concept of encapsulation and provide an example.",
				"Encapsulation is the bundling of data and methods that operate on that data within a single unit (class), and restricting access to internal implementation details. Example: A class with private variables and public getter/setter methods."),
		),
	},
}

// IDs returns the builtin test IDs in order.
func IDs() []string {
	ids := make([]string, 0, len(builtin))
	for id := range builtin {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Lookup returns a copy of a builtin test.
func Lookup(id string) (Test, bool) {
	t, ok := builtin[id]
	if !ok {
		return Test{}, false
	}
	t.Questions = slices.Clone(t.Questions)
	for i := range t.Questions {
		t.Questions[i].Options = slices.Clone(t.Questions[i].Options)
	}
	return t, true
}
