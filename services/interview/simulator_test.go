package interview

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"patientsim/models"
	"patientsim/services/catalog"
)

type countingObserver struct {
	turns    int
	sessions []models.Report
}

func (o *countingObserver) ObserveTurn() { o.turns++ }

func (o *countingObserver) ObserveSession(r models.Report) { o.sessions = append(o.sessions, r) }

type failingRespondent struct{}

func (failingRespondent) Respond(context.Context, *Session, string) (string, error) {
	return "", errors.New("backend unavailable")
}

func runScripted(t *testing.T, rec *models.PatientRecord, rng RandomSource, observer Observer) *models.SimulationResult {
	t.Helper()
	c := catalog.Default()
	s := NewSession(0)

	result, err := NewSimulator(0, observer).Run(context.Background(), rec, NewDoctor(c, rec), NewPatient(rec, rng, 0.5), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func TestSimulatorRunPneumonia(t *testing.T) {
	observer := &countingObserver{}
	result := runScripted(t, pneumonia(), &fixedRandom{values: []float64{0.0}}, observer)

	if len(result.Transcript) != 6 {
		t.Fatalf("expected 5 questions plus the closing exchange, got %d turns", len(result.Transcript))
	}
	last := result.Transcript[len(result.Transcript)-1]
	if last.Question != ClosingMessage || last.Answer != ClosingAcknowledgement || last.Evaluation != nil {
		t.Errorf("unexpected closing turn %+v", last)
	}
	if got := result.Transcript[4].Answer; got != NoOtherSymptoms {
		t.Errorf("probe answer = %q, expected %q once every symptom was asked about", got, NoOtherSymptoms)
	}

	r := result.Report
	if r.Coverage != 1 || r.ExplicitCount != 3 || r.VolunteeredCount != 0 || r.MissedCount != 0 {
		t.Errorf("unexpected report counts %+v", r)
	}
	if r.Verdict.Confidence != models.ConfidenceHigh {
		t.Errorf("confidence = %s, expected HIGH", r.Verdict.Confidence)
	}
	if observer.turns != 5 || len(observer.sessions) != 1 {
		t.Errorf("observer saw %d turns and %d sessions", observer.turns, len(observer.sessions))
	}
}

func TestSimulatorRunUrinaryTractInfection(t *testing.T) {
	rec := &models.PatientRecord{
		CaseID:    "2002",
		Diagnosis: "Urinary tract infection",
		Symptoms:  []string{"burning", "pain", "frequency"},
	}
	result := runScripted(t, rec, &fixedRandom{values: []float64{0.1, 0.9}}, nil)

	r := result.Report
	if !slices.Equal(r.ExplicitlyCovered, []string{"pain"}) {
		t.Errorf("explicitly covered = %v, expected [pain]", r.ExplicitlyCovered)
	}
	if !slices.Equal(r.Volunteered, []string{"burning"}) {
		t.Errorf("volunteered = %v, expected [burning]", r.Volunteered)
	}
	if !slices.Equal(r.Missed, []string{"frequency"}) {
		t.Errorf("missed = %v, expected [frequency]", r.Missed)
	}
	if !slices.Equal(r.FollowUps, []string{"Suggested follow-up: Ask about 'frequency'"}) {
		t.Errorf("unexpected follow-ups %v", r.FollowUps)
	}
	if r.Verdict.Confidence != models.ConfidenceMedium {
		t.Errorf("confidence = %s, expected MEDIUM", r.Verdict.Confidence)
	}
	if r.GroundTruth != "Urinary tract infection" || r.Verdict.Diagnosis != r.GroundTruth {
		t.Errorf("unexpected diagnosis in report %+v", r.Verdict)
	}
}

func TestSimulatorUnknownDiagnosis(t *testing.T) {
	rec := &models.PatientRecord{Diagnosis: "Migraine"}
	result := runScripted(t, rec, &fixedRandom{values: []float64{0.0}}, nil)

	if len(result.Transcript) != 1 {
		t.Fatalf("expected only the closing exchange, got %d turns", len(result.Transcript))
	}
	if result.Report.Coverage != 0 || result.Report.Verdict.Confidence != models.ConfidenceLow {
		t.Errorf("unexpected report %+v", result.Report)
	}
}

func TestSimulatorRespectsTurnCap(t *testing.T) {
	rec := pneumonia()
	c := catalog.Default()
	s := NewSession(0)

	result, err := NewSimulator(2, nil).Run(context.Background(), rec, NewDoctor(c, rec), NewPatient(rec, &fixedRandom{values: []float64{0.0}}, 0.5), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Transcript) != 2 {
		t.Errorf("expected 2 turns, got %d", len(result.Transcript))
	}
	if len(s.Answers) != 2 {
		t.Errorf("expected 2 recorded answers, got %d", len(s.Answers))
	}
}

func TestSimulatorPropagatesErrors(t *testing.T) {
	rec := pneumonia()
	d := NewDoctor(catalog.Default(), rec)

	_, err := NewSimulator(0, nil).Run(context.Background(), rec, d, failingRespondent{}, NewSession(0))
	if err == nil || !strings.Contains(err.Error(), "backend unavailable") {
		t.Errorf("expected respondent error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewSimulator(0, nil).Run(ctx, rec, d, NewPatient(rec, NewRandom(1), 0.5), NewSession(0))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSessionSetsStayDisjoint(t *testing.T) {
	c := catalog.Default()

	for _, dx := range c.Diagnoses() {
		for seed := int64(1); seed <= 25; seed++ {
			rec := &models.PatientRecord{Diagnosis: dx, Symptoms: c.Symptoms(dx)}
			s := NewSession(0)
			result, err := NewSimulator(0, nil).Run(context.Background(), rec, NewDoctor(c, rec), NewPatient(rec, NewRandom(seed), 0.5), s)
			if err != nil {
				t.Fatalf("%s seed %d: unexpected error: %v", dx, seed, err)
			}

			for _, sym := range s.ExplicitlyCovered {
				if slices.Contains(s.Volunteered, sym) {
					t.Errorf("%s seed %d: %q is both explicit and volunteered", dx, seed, sym)
				}
			}
			if hasDuplicates(s.ExplicitlyCovered) || hasDuplicates(s.Volunteered) {
				t.Errorf("%s seed %d: duplicate symptoms in %v / %v", dx, seed, s.ExplicitlyCovered, s.Volunteered)
			}
			if cov := result.Report.Coverage; cov < 0 || cov > 1 {
				t.Errorf("%s seed %d: coverage %v out of range", dx, seed, cov)
			}
		}
	}
}

func TestRenderReport(t *testing.T) {
	result := runScripted(t, &models.PatientRecord{
		Diagnosis: "Urinary tract infection",
		Symptoms:  []string{"burning", "pain", "frequency"},
	}, &fixedRandom{values: []float64{0.1, 0.9}}, nil)

	text := RenderReport(result.Report)
	for _, want := range []string{
		"Total symptoms: 3",
		"Coverage: 33%",
		"Covered symptoms: ['pain']",
		"Missed symptoms: ['frequency']",
		"--- Learning Feedback ---\nSuggested follow-up: Ask about 'frequency'",
		"Doctor's final diagnosis: Urinary tract infection",
		"Confidence: MEDIUM",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}

	transcript := RenderTranscript(result.Transcript)
	if !strings.Contains(transcript, "Doctor: Are you experiencing painful urination?\nPatient: Yes, I am experiencing pain.") {
		t.Errorf("unexpected transcript:\n%s", transcript)
	}
}

func hasDuplicates(items []string) bool {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item] {
			return true
		}
		seen[item] = true
	}
	return false
}

func BenchmarkSimulatorRun(b *testing.B) {
	c := catalog.Default()
	rec := pneumonia()
	rng := NewRandom(42)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := NewSession(0)
		_, err := NewSimulator(0, nil).Run(context.Background(), rec, NewDoctor(c, rec), NewPatient(rec, rng, 0.5), s)
		if err != nil {
			b.Fatal(err)
		}
	}
}
