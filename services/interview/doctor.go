package interview

import (
	"context"
	"log"
	"strings"

	"patientsim/models"
	"patientsim/services/catalog"
)

const (
	ClosingMessage = "Thank you. I have enough information."
	closingMarker  = "enough information"
)

type State int

const (
	Asking State = iota
	Exhausted
)

func (s State) String() string {
	switch s {
	case Asking:
		return "ASKING"
	case Exhausted:
		return "EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}

// Interviewer produces the doctor side of the conversation.
type Interviewer interface {
	Ask(ctx context.Context, s *Session) (string, error)
	RecordAnswer(s *Session, answer string)
}

// Doctor walks the scripted question list for one diagnosis.
type Doctor struct {
	diagnosis string
	symptoms  []string
	questions []string
}

// NewDoctor selects the question list for rec's diagnosis. An unknown
// diagnosis leaves the list empty, so the doctor starts out exhausted.
func NewDoctor(c *catalog.Catalog, rec *models.PatientRecord) *Doctor {
	questions := c.Questions(rec.Diagnosis)
	log.Printf("[INFO] Doctor prepared %d questions for diagnosis %q", len(questions), rec.Diagnosis)
	return &Doctor{
		diagnosis: rec.Diagnosis,
		symptoms:  rec.Symptoms,
		questions: questions,
	}
}

func (d *Doctor) Questions() []string {
	return append([]string(nil), d.questions...)
}

func (d *Doctor) State(s *Session) State {
	if s.questionIndex < len(d.questions) && s.inferences < s.budget {
		return Asking
	}
	return Exhausted
}

// NextQuestion returns the current question and advances the session, or the
// closing message once the questions or the inference budget run out.
func (d *Doctor) NextQuestion(s *Session) string {
	if d.State(s) == Exhausted {
		return ClosingMessage
	}
	q := d.questions[s.questionIndex]
	s.questionIndex++
	s.inferences++
	return q
}

func (d *Doctor) Ask(_ context.Context, s *Session) (string, error) {
	return d.NextQuestion(s), nil
}

// RecordAnswer logs the patient's reply without checking it against the
// question that was asked.
func (d *Doctor) RecordAnswer(s *Session, answer string) {
	s.Answers = append(s.Answers, answer)
}

// FinalDiagnosis always names the ground-truth diagnosis; only the
// confidence depends on the interview. coverage is reported for context and
// does not affect the tier.
func (d *Doctor) FinalDiagnosis(coverage float64, known []string) models.DiagnosisVerdict {
	v := Verdict(d.diagnosis, d.symptoms, known)
	log.Printf("[INFO] Final diagnosis %q with %s confidence (coverage %.2f, reported %.2f)", v.Diagnosis, v.Confidence, coverage, v.ReportedRatio)
	return v
}

// IsClosing reports whether a doctor utterance ends the interview.
func IsClosing(utterance string) bool {
	return strings.Contains(strings.ToLower(utterance), closingMarker)
}
