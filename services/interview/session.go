package interview

import (
	"math/rand"
	"slices"
	"time"

	"patientsim/models"

	"github.com/google/uuid"
)

const DefaultInferenceBudget = 15

// RandomSource is the subset of *rand.Rand the simulator draws from.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// NewRandom returns a seeded generator. A zero seed picks one from the clock.
func NewRandom(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Session is the mutable state of one simulated interview. It is owned by a
// single driver and handed to each doctor, patient and evaluator call.
//
// ExplicitlyCovered and Volunteered only ever grow, never hold duplicates and
// never share an element.
type Session struct {
	ID string

	ExplicitlyCovered []string
	Volunteered       []string
	Answers           []string
	Transcript        []models.Turn

	questionIndex int
	inferences    int
	budget        int

	// volunteeredAlready is the patient's own memory of what it offered on
	// an open-ended probe.
	volunteeredAlready map[string]struct{}
}

func NewSession(budget int) *Session {
	if budget <= 0 {
		budget = DefaultInferenceBudget
	}
	return &Session{
		ID:                 uuid.NewString(),
		ExplicitlyCovered:  []string{},
		Volunteered:        []string{},
		Answers:            []string{},
		Transcript:         []models.Turn{},
		budget:             budget,
		volunteeredAlready: make(map[string]struct{}),
	}
}

func (s *Session) QuestionIndex() int { return s.questionIndex }

func (s *Session) Inferences() int { return s.inferences }

func (s *Session) Budget() int { return s.budget }

// Remaining is the number of inferences left before the budget is spent.
func (s *Session) Remaining() int {
	if s.inferences >= s.budget {
		return 0
	}
	return s.budget - s.inferences
}

// CountInference spends one unit of the inference budget.
func (s *Session) CountInference() {
	s.inferences++
}

// Surfaced returns every symptom the interview has brought up so far,
// explicit ones first.
func (s *Session) Surfaced() []string {
	out := make([]string, 0, len(s.ExplicitlyCovered)+len(s.Volunteered))
	out = append(out, s.ExplicitlyCovered...)
	return append(out, s.Volunteered...)
}

func (s *Session) known(symptom string) bool {
	return slices.Contains(s.ExplicitlyCovered, symptom) || slices.Contains(s.Volunteered, symptom)
}

func (s *Session) wasVolunteered(symptom string) bool {
	_, ok := s.volunteeredAlready[symptom]
	return ok
}

func (s *Session) markVolunteered(symptom string) {
	s.volunteeredAlready[symptom] = struct{}{}
}
