package models

import "time"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

type CoverageResult struct {
	Coverage          float64  `json:"coverage"`
	ExplicitlyCovered []string `json:"explicitly_covered"`
	Volunteered       []string `json:"volunteered"`
	Summary           string   `json:"summary"`
}

type DiagnosisVerdict struct {
	Diagnosis     string     `json:"diagnosis"`
	Confidence    Confidence `json:"confidence"`
	ReportedRatio float64    `json:"reported_ratio"`
}

// Turn is one doctor question with the patient's answer. Evaluation is nil
// for the closing exchange.
type Turn struct {
	Index      int             `json:"index"`
	Question   string          `json:"question"`
	Answer     string          `json:"answer"`
	Evaluation *CoverageResult `json:"evaluation,omitempty"`
}

type Report struct {
	ID                string           `json:"id"`
	SessionID         string           `json:"session_id"`
	CaseID            string           `json:"case_id"`
	TotalSymptoms     int              `json:"total_symptoms"`
	ExplicitCount     int              `json:"explicit_count"`
	VolunteeredCount  int              `json:"volunteered_count"`
	MissedCount       int              `json:"missed_count"`
	Coverage          float64          `json:"coverage"`
	ExplicitlyCovered []string         `json:"explicitly_covered"`
	Volunteered       []string         `json:"volunteered"`
	Missed            []string         `json:"missed"`
	FollowUps         []string         `json:"follow_ups"`
	GroundTruth       string           `json:"ground_truth"`
	Verdict           DiagnosisVerdict `json:"verdict"`
	Differential      []string         `json:"differential,omitempty"`
	Turns             int              `json:"turns"`
	CreatedAt         time.Time        `json:"created_at"`
}

type SimulationResult struct {
	SessionID  string              `json:"session_id"`
	Transcript []Turn              `json:"transcript"`
	Report     Report              `json:"report"`
	Tokens     map[string]TokenLog `json:"tokens,omitempty"`
}

type TokenLog struct {
	PromptTokens     []int `json:"prompt_tokens"`
	CompletionTokens []int `json:"completion_tokens"`
	TotalTokens      []int `json:"total_tokens"`
}

func (l *TokenLog) Add(prompt, completion, total int) {
	l.PromptTokens = append(l.PromptTokens, prompt)
	l.CompletionTokens = append(l.CompletionTokens, completion)
	l.TotalTokens = append(l.TotalTokens, total)
}
