package interview

import (
	"context"
	"fmt"
	"log"

	"patientsim/models"
)

const DefaultMaxTurns = 10

// Observer is notified as a simulation progresses.
type Observer interface {
	ObserveTurn()
	ObserveSession(report models.Report)
}

type diagnoser interface {
	FinalDiagnosis(coverage float64, known []string) models.DiagnosisVerdict
}

type differentiator interface {
	Differential(ctx context.Context) ([]string, error)
}

// Simulator alternates doctor questions and patient answers for one session
// at a time, scoring each exchange as it goes.
type Simulator struct {
	maxTurns int
	observer Observer
}

func NewSimulator(maxTurns int, observer Observer) *Simulator {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Simulator{maxTurns: maxTurns, observer: observer}
}

// Run drives the interview until the doctor closes it or the turn cap is
// reached, then grades the diagnosis and builds the report.
func (sim *Simulator) Run(ctx context.Context, rec *models.PatientRecord, doctor Interviewer, patient Respondent, s *Session) (*models.SimulationResult, error) {
	log.Printf("[INFO] Starting interview %s for case %s (%s)", s.ID, rec.CaseID, rec.Diagnosis)

	for turn := 0; turn < sim.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("interview %s cancelled: %w", s.ID, err)
		}

		question, err := doctor.Ask(ctx, s)
		if err != nil {
			log.Printf("[ERROR] Doctor failed on turn %d of interview %s: %v", turn, s.ID, err)
			return nil, fmt.Errorf("failed to get doctor question: %w", err)
		}

		if IsClosing(question) {
			s.Transcript = append(s.Transcript, models.Turn{
				Index:    turn,
				Question: question,
				Answer:   ClosingAcknowledgement,
			})
			log.Printf("[INFO] Doctor closed interview %s after %d turns", s.ID, turn)
			break
		}

		answer, err := patient.Respond(ctx, s, question)
		if err != nil {
			log.Printf("[ERROR] Patient failed on turn %d of interview %s: %v", turn, s.ID, err)
			return nil, fmt.Errorf("failed to get patient answer: %w", err)
		}
		doctor.RecordAnswer(s, answer)

		result := Evaluate(s, rec.Symptoms, question, answer)
		s.Transcript = append(s.Transcript, models.Turn{
			Index:      turn,
			Question:   question,
			Answer:     answer,
			Evaluation: &result,
		})
		if sim.observer != nil {
			sim.observer.ObserveTurn()
		}
	}

	coverage := CoverageRatio(s.ExplicitlyCovered, truthSet(rec.Symptoms))
	var verdict models.DiagnosisVerdict
	if d, ok := doctor.(diagnoser); ok {
		verdict = d.FinalDiagnosis(coverage, s.Surfaced())
	} else {
		verdict = Verdict(rec.Diagnosis, rec.Symptoms, s.Surfaced())
	}

	report := BuildReport(s, rec, verdict)
	if d, ok := doctor.(differentiator); ok {
		differential, err := d.Differential(ctx)
		if err != nil {
			log.Printf("[WARN] No differential for interview %s: %v", s.ID, err)
		}
		report.Differential = differential
	}
	if sim.observer != nil {
		sim.observer.ObserveSession(report)
	}
	log.Printf("[INFO] Completed interview %s: coverage %d%%, confidence %s", s.ID, int(report.Coverage*100), verdict.Confidence)

	return &models.SimulationResult{
		SessionID:  s.ID,
		Transcript: s.Transcript,
		Report:     report,
	}, nil
}
