package session

import (
	"math"
	"time"
)

// TestSummary aggregates the attempts of one test.
type TestSummary struct {
	TestID       string    `json:"testId"`
	Attempts     int       `json:"attempts"`
	BestScore    int       `json:"bestScore"`
	AverageScore float64   `json:"averageScore"`
	LastScore    int       `json:"lastScore"`
	LastTaken    time.Time `json:"lastTaken"`
}

// Dashboard summarizes an attempt history.
type Dashboard struct {
	Attempts       int           `json:"attempts"`
	AverageScore   float64       `json:"averageScore"`
	BestScore      int           `json:"bestScore"`
	FallbackGrades int           `json:"fallbackGrades"`
	Tests          []TestSummary `json:"tests"`
	Recent         []TestAttempt `json:"recent"`
}

// RecentLimit caps Dashboard.Recent.
const RecentLimit = 5

// Summarize builds a dashboard over attempts, which are ordered oldest first.
// Tests are listed in order of first attempt; Recent is newest first.
func Summarize(attempts []TestAttempt) Dashboard {
	d := Dashboard{Tests: []TestSummary{}, Recent: []TestAttempt{}}
	if len(attempts) == 0 {
		return d
	}

	index := map[string]int{}
	totals := map[string]int{}
	var sum int
	for i, a := range attempts {
		sum += a.Score
		d.FallbackGrades += a.FallbackCount
		if i == 0 || a.Score > d.BestScore {
			d.BestScore = a.Score
		}

		j, ok := index[a.TestID]
		if !ok {
			j = len(d.Tests)
			index[a.TestID] = j
			d.Tests = append(d.Tests, TestSummary{TestID: a.TestID, BestScore: a.Score})
		}
		t := &d.Tests[j]
		t.Attempts++
		totals[a.TestID] += a.Score
		if a.Score > t.BestScore {
			t.BestScore = a.Score
		}
		t.LastScore = a.Score
		t.LastTaken = a.CompletedAt
	}

	d.Attempts = len(attempts)
	d.AverageScore = round1(float64(sum) / float64(len(attempts)))
	for i := range d.Tests {
		t := &d.Tests[i]
		t.AverageScore = round1(float64(totals[t.TestID]) / float64(t.Attempts))
	}

	for i := len(attempts) - 1; i >= 0 && len(d.Recent) < RecentLimit; i-- {
		d.Recent = append(d.Recent, cloneAttempt(attempts[i]))
	}
	return d
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
