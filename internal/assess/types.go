package assess

import (
	"encoding/json"
	"sort"

	"github.com/abhisek/learnforge/internal/questions"
)

// ProviderFallback tags results produced locally instead of by the service.
const ProviderFallback = "fallback"

// Result is the outcome of an assessment operation: either a live value or a
// locally computed fallback. Operations never fail; Cause records what
// triggered the fallback.
type Result[T any] struct {
	Value    T
	Fallback bool
	Cause    error
}

// Evaluation is a request to grade one answer.
type Evaluation struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Type     questions.Kind `json:"type"`
	Context  map[string]any `json:"context"`
}

// EvaluationResult is the grade of one answer.
type EvaluationResult struct {
	Correct        bool     `json:"correct"`
	Feedback       string   `json:"feedback"`
	Score          float64  `json:"score"`
	NextDifficulty string   `json:"nextDifficulty"`
	Suggestions    []string `json:"suggestions"`
	Provider       string   `json:"provider,omitempty"`
}

// BatchItem pairs an evaluation request with its result.
type BatchItem struct {
	Evaluation
	Result   EvaluationResult `json:"result"`
	Fallback bool             `json:"-"`
}

// QuestionRequest asks the service for an adaptive question.
type QuestionRequest struct {
	Subject           string   `json:"subject"`
	Difficulty        string   `json:"difficulty"`
	Topic             *string  `json:"topic"`
	PreviousQuestions []string `json:"previousQuestions"`
}

// GeneratedQuestion is an adaptive question.
type GeneratedQuestion struct {
	Question      string           `json:"question"`
	Type          questions.Kind   `json:"type"`
	Subject       string           `json:"subject"`
	Difficulty    string           `json:"difficulty"`
	Options       []string         `json:"options"`
	CorrectAnswer questions.Answer `json:"correctAnswer"`
	Explanation   string           `json:"explanation"`
	Provider      string           `json:"provider,omitempty"`
}

// ExplanationRequest asks for a tutoring explanation of an answer.
type ExplanationRequest struct {
	Question      string  `json:"question"`
	StudentAnswer string  `json:"studentAnswer"`
	CorrectAnswer *string `json:"correctAnswer"`
}

// TutoringExplanation explains a concept after an answer.
type TutoringExplanation struct {
	Explanation    string   `json:"explanation"`
	KeyConcepts    []string `json:"key_concepts"`
	Examples       []string `json:"examples"`
	CommonMistakes []string `json:"common_mistakes"`
	PracticeTips   []string `json:"practice_tips"`
	NextSteps      string   `json:"next_steps"`
	Provider       string   `json:"provider,omitempty"`
}

// ChatMessage is one turn of a tutoring conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationRequest continues a tutoring conversation.
type ConversationRequest struct {
	StudentMessage      string        `json:"studentMessage"`
	ConversationHistory []ChatMessage `json:"conversationHistory"`
}

// TutorReply is the tutor's answer in a conversation.
type TutorReply struct {
	Response            string   `json:"response"`
	ResponseType        string   `json:"response_type"`
	SuggestedQuestions  []string `json:"suggested_questions"`
	Resources           []string `json:"resources"`
	ConfidenceLevel     string   `json:"confidence_level"`
	NextTopicSuggestion string   `json:"next_topic_suggestion"`
	Provider            string   `json:"provider,omitempty"`
}

// LearningPathRequest asks for study recommendations.
type LearningPathRequest struct {
	StudentProgress map[string]any `json:"studentProgress"`
	Subjects        []string       `json:"subjects"`
}

// SubjectRecommendation ranks one subject.
type SubjectRecommendation struct {
	Subject  string `json:"subject"`
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// LearningStep is one step of a recommended sequence.
type LearningStep struct {
	Topic         string   `json:"topic"`
	Difficulty    string   `json:"difficulty"`
	EstimatedTime string   `json:"estimated_time"`
	Prerequisites []string `json:"prerequisites"`
}

// LearningPath is a personalized study plan.
type LearningPath struct {
	RecommendedSubjects []SubjectRecommendation `json:"recommended_subjects"`
	LearningSequence    []LearningStep          `json:"learning_sequence"`
	Goals               []string                `json:"goals"`
	StudyTips           []string                `json:"study_tips"`
	ProgressMilestones  []string                `json:"progress_milestones"`
	Provider            string                  `json:"provider,omitempty"`
}

// ErrorAnalysisRequest asks for an analysis of a student's mistakes.
type ErrorAnalysisRequest struct {
	StudentErrors []map[string]any `json:"studentErrors"`
	Subject       string           `json:"subject"`
}

// ErrorPattern is a recurring kind of mistake.
type ErrorPattern struct {
	Pattern   string `json:"pattern"`
	Frequency string `json:"frequency"`
	RootCause string `json:"root_cause"`
}

// Remediation targets one kind of mistake.
type Remediation struct {
	ErrorType           string   `json:"error_type"`
	RemediationStrategy string   `json:"remediation_strategy"`
	PracticeExercises   []string `json:"practice_exercises"`
}

// ErrorAnalysis diagnoses a student's mistakes.
type ErrorAnalysis struct {
	ErrorPatterns       []ErrorPattern `json:"error_patterns"`
	TargetedRemediation []Remediation  `json:"targeted_remediation"`
	LearningGaps        []string       `json:"learning_gaps"`
	RecommendedFocus    []string       `json:"recommended_focus"`
	Encouragement       string         `json:"encouragement"`
	Provider            string         `json:"provider,omitempty"`
}

// ProviderInfo is the availability of one model provider behind the service.
type ProviderInfo struct {
	Available bool   `json:"available"`
	Type      string `json:"type"`
}

// ProviderStatus maps provider names to their availability. When the status
// could not be fetched, Error is set and Providers is empty.
type ProviderStatus struct {
	Providers map[string]ProviderInfo
	Error     string
}

// Names returns the provider names in order.
func (s ProviderStatus) Names() []string {
	names := make([]string, 0, len(s.Providers))
	for n := range s.Providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s ProviderStatus) MarshalJSON() ([]byte, error) {
	if s.Error != "" {
		return json.Marshal(map[string]string{"error": s.Error})
	}
	if s.Providers == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.Providers)
}

func (s *ProviderStatus) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ProviderStatus{Providers: make(map[string]ProviderInfo, len(raw))}
	for name, v := range raw {
		if name == "error" {
			var msg string
			if err := json.Unmarshal(v, &msg); err == nil {
				s.Error = msg
				continue
			}
		}
		var info ProviderInfo
		if err := json.Unmarshal(v, &info); err != nil {
			return err
		}
		s.Providers[name] = info
	}
	return nil
}
