package interview

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"patientsim/models"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// BuildReport summarises a finished session. Missed symptoms keep the
// catalog order so follow-up suggestions read in the order a doctor would
// ask them.
func BuildReport(s *Session, rec *models.PatientRecord, verdict models.DiagnosisVerdict) models.Report {
	truth := truthSet(rec.Symptoms)
	surfaced := s.Surfaced()

	explicit := lo.Uniq(s.ExplicitlyCovered)
	volunteered := lo.Uniq(s.Volunteered)
	sort.Strings(explicit)
	sort.Strings(volunteered)

	missed := lo.Filter(truth, func(sym string, _ int) bool {
		return !lo.Contains(surfaced, sym)
	})
	followUps := lo.Map(missed, func(sym string, _ int) string {
		return fmt.Sprintf("Suggested follow-up: Ask about '%s'", sym)
	})

	return models.Report{
		ID:                uuid.NewString(),
		SessionID:         s.ID,
		CaseID:            rec.CaseID,
		TotalSymptoms:     len(truth),
		ExplicitCount:     len(explicit),
		VolunteeredCount:  len(volunteered),
		MissedCount:       len(missed),
		Coverage:          CoverageRatio(s.ExplicitlyCovered, truth),
		ExplicitlyCovered: explicit,
		Volunteered:       volunteered,
		Missed:            missed,
		FollowUps:         followUps,
		GroundTruth:       rec.Diagnosis,
		Verdict:           verdict,
		Turns:             len(s.Transcript),
		CreatedAt:         time.Now().UTC(),
	}
}

// RenderReport formats a report as the plain-text summary printed after an
// interview.
func RenderReport(r models.Report) string {
	var sb strings.Builder

	sb.WriteString("--- Interview Quality Summary ---\n")
	sb.WriteString(fmt.Sprintf("Total symptoms: %d\n", r.TotalSymptoms))
	sb.WriteString(fmt.Sprintf("Explicitly covered: %d\n", r.ExplicitCount))
	sb.WriteString(fmt.Sprintf("Volunteered: %d\n", r.VolunteeredCount))
	sb.WriteString(fmt.Sprintf("Coverage: %d%%\n", int(r.Coverage*100)))
	sb.WriteString(fmt.Sprintf("Covered symptoms: %s\n", formatList(r.ExplicitlyCovered)))
	sb.WriteString(fmt.Sprintf("Volunteered symptoms: %s\n", formatList(r.Volunteered)))
	sb.WriteString(fmt.Sprintf("Missed symptoms: %s\n", formatList(r.Missed)))

	if len(r.FollowUps) > 0 {
		sb.WriteString("\n--- Learning Feedback ---\n")
		for _, f := range r.FollowUps {
			sb.WriteString(f + "\n")
		}
	}

	sb.WriteString("\n--- Final Check ---\n")
	sb.WriteString(fmt.Sprintf("Ground truth diagnosis: %s\n", r.GroundTruth))
	sb.WriteString(fmt.Sprintf("Doctor's final diagnosis: %s\n", r.Verdict.Diagnosis))
	sb.WriteString(fmt.Sprintf("Confidence: %s\n", r.Verdict.Confidence))

	return sb.String()
}

// RenderTranscript formats the doctor/patient exchanges with their running
// evaluation.
func RenderTranscript(turns []models.Turn) string {
	var sb strings.Builder
	for _, t := range turns {
		sb.WriteString(fmt.Sprintf("\nDoctor: %s\n", t.Question))
		sb.WriteString(fmt.Sprintf("Patient: %s\n", t.Answer))
		if t.Evaluation != nil {
			sb.WriteString(fmt.Sprintf("Evaluation: %s\n", t.Evaluation.Summary))
		}
	}
	return sb.String()
}
