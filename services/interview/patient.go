package interview

import (
	"context"
	"strings"

	"patientsim/models"
	"patientsim/services/catalog"

	"github.com/samber/lo"
)

const (
	DefaultVolunteerProbability = 0.5

	ClosingAcknowledgement = "Ok"
	AffirmativePrefix      = "Yes, I am experiencing "
	NoOtherSymptoms        = "No other symptoms."
	NegativeAnswer         = "No, I am not experiencing that."
)

// Respondent produces the patient side of the conversation.
type Respondent interface {
	Respond(ctx context.Context, s *Session, question string) (string, error)
}

// Patient answers from its ground-truth symptom list using plain substring
// matching.
type Patient struct {
	symptoms    []string
	rng         RandomSource
	probability float64
}

// NewPatient builds a scripted patient. probability is the chance of
// volunteering each remaining symptom on an open-ended probe; values outside
// [0, 1] fall back to the default. A nil rng is seeded from the clock.
func NewPatient(rec *models.PatientRecord, rng RandomSource, probability float64) *Patient {
	if probability < 0 || probability > 1 {
		probability = DefaultVolunteerProbability
	}
	if rng == nil {
		rng = NewRandom(0)
	}
	return &Patient{
		symptoms:    lowerAll(rec.Symptoms),
		rng:         rng,
		probability: probability,
	}
}

func (p *Patient) Answer(s *Session, question string) string {
	q := strings.ToLower(question)
	if strings.Contains(q, closingMarker) {
		return ClosingAcknowledgement
	}

	surfaced := s.Surfaced()
	matched := lo.Filter(p.symptoms, func(sym string, _ int) bool {
		return strings.Contains(q, sym) && !lo.Contains(surfaced, sym)
	})
	if len(matched) > 0 {
		return affirmative(matched)
	}

	if catalog.IsOpenProbe(question) {
		var offered []string
		for _, sym := range p.symptoms {
			if lo.Contains(surfaced, sym) || s.wasVolunteered(sym) {
				continue
			}
			if p.rng.Float64() < p.probability {
				offered = append(offered, sym)
				s.markVolunteered(sym)
			}
		}
		if len(offered) > 0 {
			return affirmative(offered)
		}
		return NoOtherSymptoms
	}

	return NegativeAnswer
}

func (p *Patient) Respond(_ context.Context, s *Session, question string) (string, error) {
	return p.Answer(s, question), nil
}

func affirmative(symptoms []string) string {
	return AffirmativePrefix + strings.Join(symptoms, ", ") + "."
}

// lowerAll trims and lower-cases values, dropping blanks.
func lowerAll(values []string) []string {
	return lo.Compact(lo.Map(values, func(v string, _ int) string {
		return strings.ToLower(strings.TrimSpace(v))
	}))
}
