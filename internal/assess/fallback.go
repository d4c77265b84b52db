package assess

import (
	"github.com/abhisek/learnforge/internal/questions"
)

// CannedQuestion is a fallback question for one subject and difficulty.
type CannedQuestion struct {
	Question      string
	Options       []string
	CorrectAnswer int
}

// FallbackCatalog holds the canned questions served when question generation
// fails. It is treated as immutable once handed to a Client.
type FallbackCatalog struct {
	// DefaultSubject is used for subjects without their own table.
	DefaultSubject string

	// Questions maps subject to difficulty to question.
	Questions map[string]map[questions.Difficulty]CannedQuestion
}

// DefaultFallbackCatalog returns the builtin Mathematics table.
func DefaultFallbackCatalog() FallbackCatalog {
	return FallbackCatalog{
		DefaultSubject: "Mathematics",
		Questions: map[string]map[questions.Difficulty]CannedQuestion{
			"Mathematics": {
				questions.Beginner: {
					Question:      "What is 2 + 3?",
					Options:       []string{"4", "5", "6", "7"},
					CorrectAnswer: 1,
				},
				questions.Intermediate: {
					Question:      "What is the value of x in 2x + 5 = 11?",
					Options:       []string{"2", "3", "4", "5"},
					CorrectAnswer: 1,
				},
				questions.Advanced: {
					Question:      "What is the derivative of x²?",
					Options:       []string{"x", "2x", "x²", "2x²"},
					CorrectAnswer: 1,
				},
			},
		},
	}
}

// Lookup returns the canned question for subject and difficulty. Unknown
// subjects use the default subject's table and unknown difficulties use
// beginner.
func (c FallbackCatalog) Lookup(subject, difficulty string) (CannedQuestion, bool) {
	table, ok := c.Questions[subject]
	if !ok {
		table, ok = c.Questions[c.DefaultSubject]
		if !ok {
			return CannedQuestion{}, false
		}
	}
	q, ok := table[questions.Difficulty(difficulty)]
	if !ok {
		q, ok = table[questions.Beginner]
	}
	return q, ok
}

const (
	fallbackFeedback            = "AI system is currently setting up. Your answer has been recorded."
	fallbackQuestionExplanation = "This is a fallback question while the AI system is being set up."

	// StatusUnavailable is the error reported when the provider status
	// cannot be fetched.
	StatusUnavailable = "Unable to check provider status"
)

func fallbackEvaluation() EvaluationResult {
	return EvaluationResult{
		Correct:        true,
		Feedback:       fallbackFeedback,
		Score:          75,
		NextDifficulty: string(questions.Intermediate),
		Suggestions:    []string{"Keep practicing", "Review the concepts"},
		Provider:       ProviderFallback,
	}
}

func (c FallbackCatalog) fallbackQuestion(subject, difficulty string) GeneratedQuestion {
	q := GeneratedQuestion{
		Type:        questions.KindMultipleChoice,
		Subject:     subject,
		Difficulty:  difficulty,
		Options:     []string{},
		Explanation: fallbackQuestionExplanation,
		Provider:    ProviderFallback,
	}
	if canned, ok := c.Lookup(subject, difficulty); ok {
		q.Question = canned.Question
		q.Options = append([]string{}, canned.Options...)
		q.CorrectAnswer = questions.IndexAnswer(canned.CorrectAnswer)
	}
	return q
}

func fallbackExplanation() TutoringExplanation {
	return TutoringExplanation{
		Explanation:    "Let me help you understand this concept better.",
		KeyConcepts:    []string{"Core concept", "Fundamental principle"},
		Examples:       []string{"Example 1", "Example 2"},
		CommonMistakes: []string{"Common error pattern"},
		PracticeTips:   []string{"Practice regularly", "Review fundamentals"},
		NextSteps:      "Continue practicing similar problems.",
		Provider:       ProviderFallback,
	}
}

func fallbackConversation() TutorReply {
	return TutorReply{
		Response:            "I understand your question. The AI tutoring system is being set up to provide better assistance.",
		ResponseType:        "explanation",
		SuggestedQuestions:  []string{"Can you tell me more about what you're working on?"},
		Resources:           []string{"Review your study materials"},
		ConfidenceLevel:     "medium",
		NextTopicSuggestion: "Continue with current topic",
		Provider:            ProviderFallback,
	}
}

func fallbackLearningPath(subjects []string) LearningPath {
	recs := make([]SubjectRecommendation, len(subjects))
	for i, s := range subjects {
		recs[i] = SubjectRecommendation{Subject: s, Priority: "medium", Reason: "Good foundation for learning"}
	}
	return LearningPath{
		RecommendedSubjects: recs,
		LearningSequence: []LearningStep{{
			Topic:         "Basic concepts",
			Difficulty:    string(questions.Beginner),
			EstimatedTime: "1 hour",
			Prerequisites: []string{},
		}},
		Goals:              []string{"Master fundamental concepts"},
		StudyTips:          []string{"Practice regularly", "Review previous material"},
		ProgressMilestones: []string{"Complete basic concepts"},
		Provider:           ProviderFallback,
	}
}

func fallbackErrorAnalysis() ErrorAnalysis {
	return ErrorAnalysis{
		ErrorPatterns: []ErrorPattern{{
			Pattern:   "General errors",
			Frequency: "occasional",
			RootCause: "Need more practice",
		}},
		TargetedRemediation: []Remediation{{
			ErrorType:           "general",
			RemediationStrategy: "Practice more problems",
			PracticeExercises:   []string{"Basic exercises"},
		}},
		LearningGaps:     []string{"Basic understanding"},
		RecommendedFocus: []string{"Fundamental concepts"},
		Encouragement:    "Keep practicing, you're making progress!",
		Provider:         ProviderFallback,
	}
}

func fallbackStatus() ProviderStatus {
	return ProviderStatus{Providers: map[string]ProviderInfo{}, Error: StatusUnavailable}
}
