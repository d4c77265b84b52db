package questions

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

var sampleRows = map[string][]Row{
	"dsa": {
		{
			Question:      "What is the time complexity of binary search?",
			Type:          "multiple-choice",
			Options:       "O(1),O(log n),O(n),O(n²)",
			CorrectAnswer: "1",
			Explanation:   "Binary search has O(log n) time complexity because it divides the search space in half with each iteration.",
			Difficulty:    "beginner",
			Topic:         "Searching",
		},
		{
			Question:      "Which data structure follows LIFO principle?",
			Type:          "multiple-choice",
			Options:       "Queue,Stack,Linked List,Tree",
			CorrectAnswer: "1",
			Explanation:   "Stack follows LIFO (Last In, First Out) principle where the last element added is the first one to be removed.",
			Difficulty:    "beginner",
			Topic:         "Stacks & Queues",
		},
	},
	"cn": {
		{
			Question:      "Which layer of the OSI model is responsible for routing?",
			Type:          "multiple-choice",
			Options:       "Physical Layer,Data Link Layer,Network Layer,Transport Layer",
			CorrectAnswer: "2",
			Explanation:   "The Network Layer (Layer 3) is responsible for routing packets between different networks.",
			Difficulty:    "beginner",
			Topic:         "OSI Model",
		},
	},
	"os": {
		{
			Question:    "What is a deadlock and what are its necessary conditions?",
			Type:        "essay",
			Explanation: "A deadlock occurs when two or more processes are blocked waiting for resources held by each other. The four necessary conditions are: mutual exclusion, hold and wait, no preemption, and circular wait.",
			Difficulty:  "intermediate",
			Topic:       "Deadlocks",
		},
	},
	"dbms": {
		{
			Question:    "What are ACID properties in database transactions?",
			Type:        "essay",
			Explanation: "ACID stands for Atomicity (all or nothing), Consistency (data integrity), Isolation (concurrent transactions don't interfere), and Durability (permanent changes).",
			Difficulty:  "intermediate",
			Topic:       "ACID Properties",
		},
	},
	"webdev": {
		{
			Question:    "What is the difference between localStorage and sessionStorage?",
			Type:        "essay",
			Explanation: "localStorage persists data even after the browser is closed, while sessionStorage data is cleared when the browser session ends.",
			Difficulty:  "beginner",
			Topic:       "JavaScript",
		},
	},
}

// SampleRows returns a copy of the seed rows for a subject, or nil when the
// subject has none.
func SampleRows(subjectID string) []Row {
	rows := sampleRows[subjectID]
	if rows == nil {
		return nil
	}
	return append([]Row(nil), rows...)
}

// SampleSource is the source name CreateSample writes for a subject.
func SampleSource(subjectID string) string {
	return subjectID + "_questions.csv"
}

// CreateSample writes the seed questions of a subject as a source in the
// source directory and returns its path. Subjects without seed questions get
// a header-only source. An existing source of the same name is replaced.
func (im *Importer) CreateSample(subjectID, subjectName string) (string, error) {
	p := im.Path(SampleSource(subjectID))
	rows := SampleRows(subjectID)
	if err := os.WriteFile(p, []byte(EncodeRows(rows)), 0o644); err != nil {
		return "", fmt.Errorf("write sample source: %w", err)
	}
	im.logger.Info("created sample source",
		zap.String("subject", subjectID),
		zap.String("name", subjectName),
		zap.Int("rows", len(rows)),
		zap.String("path", p))
	return p, nil
}
