package interview

import (
	"fmt"
	"strings"

	"patientsim/models"
	"patientsim/services/catalog"

	"github.com/samber/lo"
)

var affirmativePrefixLower = strings.ToLower(AffirmativePrefix)

// Evaluate scores one question/answer pair against the true symptoms and
// updates the session's coverage sets in place.
//
// A direct question covers every true symptom it names, whatever the answer
// was. The open-ended probe only counts symptoms the patient affirmed.
func Evaluate(s *Session, symptoms []string, question, answer string) models.CoverageResult {
	truth := truthSet(symptoms)

	if !catalog.IsOpenProbe(question) {
		q := strings.ToLower(question)
		for _, sym := range truth {
			if strings.Contains(q, sym) && !s.known(sym) {
				s.ExplicitlyCovered = append(s.ExplicitlyCovered, sym)
			}
		}
	} else if strings.HasPrefix(strings.ToLower(answer), affirmativePrefixLower) {
		for _, token := range strings.Split(answer[len(AffirmativePrefix):], ",") {
			token = strings.TrimRight(strings.ToLower(strings.TrimSpace(token)), ".")
			if token == "" || s.known(token) {
				continue
			}
			s.Volunteered = append(s.Volunteered, token)
		}
	}

	coverage := CoverageRatio(s.ExplicitlyCovered, truth)
	return models.CoverageResult{
		Coverage:          coverage,
		ExplicitlyCovered: append([]string{}, s.ExplicitlyCovered...),
		Volunteered:       append([]string{}, s.Volunteered...),
		Summary: fmt.Sprintf("Coverage: %d%% | explicitly covered: %s | volunteered: %s",
			int(coverage*100), formatList(s.ExplicitlyCovered), formatList(s.Volunteered)),
	}
}

// CoverageRatio is |explicit| / |truth|, or 0 when there are no true symptoms.
func CoverageRatio(explicit, truth []string) float64 {
	if len(truth) == 0 {
		return 0
	}
	return float64(len(explicit)) / float64(len(truth))
}

// ConfidenceFor maps the share of reported true symptoms to a tier.
func ConfidenceFor(ratio float64) models.Confidence {
	switch {
	case ratio >= 0.75:
		return models.ConfidenceHigh
	case ratio >= 0.5:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// Verdict grades the ground-truth diagnosis by how many of its true symptoms
// appear in known.
func Verdict(diagnosis string, symptoms, known []string) models.DiagnosisVerdict {
	truth := truthSet(symptoms)
	knownLower := lowerAll(known)

	var ratio float64
	if len(truth) > 0 {
		reported := lo.Filter(truth, func(sym string, _ int) bool {
			return lo.Contains(knownLower, sym)
		})
		ratio = float64(len(reported)) / float64(len(truth))
	}

	return models.DiagnosisVerdict{
		Diagnosis:     diagnosis,
		Confidence:    ConfidenceFor(ratio),
		ReportedRatio: ratio,
	}
}

func formatList(items []string) string {
	quoted := lo.Map(items, func(item string, _ int) string {
		return "'" + item + "'"
	})
	return "[" + strings.Join(quoted, ", ") + "]"
}

func truthSet(symptoms []string) []string {
	return lo.Uniq(lowerAll(symptoms))
}
