package interview

import (
	"slices"
	"testing"

	"patientsim/models"
	"patientsim/services/catalog"
)

const probe = "Any other symptoms I should know about?"

// fixedRandom replays a fixed sequence of draws.
type fixedRandom struct {
	values []float64
	next   int
}

func (r *fixedRandom) Float64() float64 {
	v := r.values[r.next%len(r.values)]
	r.next++
	return v
}

func (r *fixedRandom) Intn(n int) int {
	return int(r.Float64() * float64(n))
}

func pneumonia() *models.PatientRecord {
	return &models.PatientRecord{
		CaseID:    "1001",
		Diagnosis: "Pneumonia",
		Symptoms:  []string{"cough", "fever", "shortness of breath"},
	}
}

func TestDoctorWalksQuestionsInOrder(t *testing.T) {
	c := catalog.Default()
	d := NewDoctor(c, pneumonia())
	s := NewSession(0)

	expected := c.Questions("Pneumonia")
	for i, q := range expected {
		if d.State(s) != Asking {
			t.Fatalf("expected Asking before question %d", i)
		}
		if got := d.NextQuestion(s); got != q {
			t.Errorf("question %d = %q, expected %q", i, got, q)
		}
	}

	if d.State(s) != Exhausted {
		t.Fatalf("expected Exhausted after the last question")
	}
	for i := 0; i < 3; i++ {
		if got := d.NextQuestion(s); got != ClosingMessage {
			t.Errorf("expected closing message, got %q", got)
		}
	}
	if s.QuestionIndex() != len(expected) || s.Inferences() != len(expected) {
		t.Errorf("closing message should not advance the session: index=%d inferences=%d", s.QuestionIndex(), s.Inferences())
	}
}

func TestDoctorUnknownDiagnosisStartsExhausted(t *testing.T) {
	rec := &models.PatientRecord{Diagnosis: "Migraine", Symptoms: []string{"headache"}}
	d := NewDoctor(catalog.Default(), rec)
	s := NewSession(0)

	if d.State(s) != Exhausted {
		t.Fatalf("expected Exhausted, got %s", d.State(s))
	}
	if got := d.NextQuestion(s); got != ClosingMessage {
		t.Errorf("expected closing message, got %q", got)
	}
	if s.QuestionIndex() != 0 || s.Inferences() != 0 {
		t.Error("exhausted doctor should not touch the session")
	}
}

func TestDoctorStopsAtInferenceBudget(t *testing.T) {
	d := NewDoctor(catalog.Default(), pneumonia())
	s := NewSession(2)

	d.NextQuestion(s)
	d.NextQuestion(s)
	if d.State(s) != Exhausted {
		t.Fatalf("expected Exhausted once the budget is spent")
	}
	if got := d.NextQuestion(s); got != ClosingMessage {
		t.Errorf("expected closing message, got %q", got)
	}
	if s.Remaining() != 0 {
		t.Errorf("expected no remaining inferences, got %d", s.Remaining())
	}
}

func TestDoctorRecordsEveryAnswer(t *testing.T) {
	d := NewDoctor(catalog.Default(), pneumonia())
	s := NewSession(0)

	d.RecordAnswer(s, "Ok")
	d.RecordAnswer(s, "")
	if !slices.Equal(s.Answers, []string{"Ok", ""}) {
		t.Errorf("unexpected answers log %v", s.Answers)
	}
}

func TestPatientAnswers(t *testing.T) {
	tests := []struct {
		name     string
		question string
		surfaced []string
		expected string
	}{
		{name: "closing", question: ClosingMessage, expected: ClosingAcknowledgement},
		{name: "direct match", question: "Do you have a fever?", expected: "Yes, I am experiencing fever."},
		{name: "case insensitive", question: "DO YOU HAVE A FEVER?", expected: "Yes, I am experiencing fever."},
		{name: "partial token", question: "Do you have coughing?", expected: "Yes, I am experiencing cough."},
		{name: "several matches in catalog order", question: "Any fever or cough?", expected: "Yes, I am experiencing cough, fever."},
		{name: "already surfaced", question: "Do you have a fever?", surfaced: []string{"fever"}, expected: NegativeAnswer},
		{name: "no match", question: "Are you experiencing chest pain?", expected: NegativeAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(0)
			s.ExplicitlyCovered = append(s.ExplicitlyCovered, tt.surfaced...)
			p := NewPatient(pneumonia(), &fixedRandom{values: []float64{0.99}}, 0.5)

			if got := p.Answer(s, tt.question); got != tt.expected {
				t.Errorf("Answer(%q) = %q, expected %q", tt.question, got, tt.expected)
			}
		})
	}
}

func TestPatientOpenProbe(t *testing.T) {
	t.Run("nothing drawn", func(t *testing.T) {
		p := NewPatient(pneumonia(), &fixedRandom{values: []float64{0.7}}, 0.5)
		if got := p.Answer(NewSession(0), probe); got != NoOtherSymptoms {
			t.Errorf("expected %q, got %q", NoOtherSymptoms, got)
		}
	})

	t.Run("skipped symptoms can surface later", func(t *testing.T) {
		rng := &fixedRandom{values: []float64{0.9, 0.1, 0.9, 0.1, 0.9}}
		p := NewPatient(pneumonia(), rng, 0.5)
		s := NewSession(0)

		if got := p.Answer(s, probe); got != "Yes, I am experiencing fever." {
			t.Fatalf("first probe = %q", got)
		}
		if got := p.Answer(s, probe); got != "Yes, I am experiencing cough." {
			t.Fatalf("second probe = %q", got)
		}
	})

	t.Run("volunteered symptoms are never offered again", func(t *testing.T) {
		p := NewPatient(pneumonia(), &fixedRandom{values: []float64{0.0}}, 0.5)
		s := NewSession(0)

		if got := p.Answer(s, probe); got != "Yes, I am experiencing cough, fever, shortness of breath." {
			t.Fatalf("first probe = %q", got)
		}
		for i := 0; i < 3; i++ {
			if got := p.Answer(s, probe); got != NoOtherSymptoms {
				t.Errorf("repeat probe %d = %q, expected %q", i, got, NoOtherSymptoms)
			}
		}
	})

	t.Run("surfaced symptoms are not drawn", func(t *testing.T) {
		rng := &fixedRandom{values: []float64{0.0}}
		p := NewPatient(pneumonia(), rng, 0.5)
		s := NewSession(0)
		s.ExplicitlyCovered = []string{"cough", "fever"}

		if got := p.Answer(s, probe); got != "Yes, I am experiencing shortness of breath." {
			t.Errorf("unexpected answer %q", got)
		}
		if rng.next != 1 {
			t.Errorf("expected one draw, got %d", rng.next)
		}
	})
}

func TestBlankSymptomsAreIgnored(t *testing.T) {
	rec := &models.PatientRecord{
		CaseID:    "1002",
		Diagnosis: "Pneumonia",
		Symptoms:  []string{"cough", " "},
	}
	result := runScripted(t, rec, &fixedRandom{values: []float64{0.99}}, nil)

	tests := []struct {
		question string
		expected string
	}{
		{"Are you experiencing chest pain?", NegativeAnswer},
		{"Are you experiencing shortness of breath?", NegativeAnswer},
		{"Do you have a fever?", NegativeAnswer},
		{"Do you have coughing?", "Yes, I am experiencing cough."},
		{"Any other symptoms I should know about?", NoOtherSymptoms},
	}
	for i, tt := range tests {
		turn := result.Transcript[i]
		if turn.Question != tt.question || turn.Answer != tt.expected {
			t.Errorf("turn %d = %q / %q, expected %q / %q", i, turn.Question, turn.Answer, tt.question, tt.expected)
		}
	}

	r := result.Report
	if r.TotalSymptoms != 1 || r.Coverage != 1 {
		t.Errorf("total symptoms = %d, coverage = %v, expected 1 and 1", r.TotalSymptoms, r.Coverage)
	}
	if r.Verdict.Confidence != models.ConfidenceHigh || r.Verdict.ReportedRatio != 1 {
		t.Errorf("unexpected verdict %+v", r.Verdict)
	}
}

func TestPatientWithoutRandomSource(t *testing.T) {
	p := NewPatient(pneumonia(), nil, 1)
	if got := p.Answer(NewSession(0), probe); got != "Yes, I am experiencing cough, fever, shortness of breath." {
		t.Errorf("unexpected answer %q", got)
	}
}

func TestEvaluatePneumoniaScenario(t *testing.T) {
	rec := pneumonia()
	s := NewSession(0)

	Evaluate(s, rec.Symptoms, "Are you experiencing chest pain?", NegativeAnswer)
	Evaluate(s, rec.Symptoms, "Do you have a fever?", "Yes, I am experiencing fever.")
	result := Evaluate(s, rec.Symptoms, probe, "Yes, I am experiencing shortness of breath.")

	if !slices.Equal(s.ExplicitlyCovered, []string{"fever"}) {
		t.Errorf("explicitly covered = %v, expected [fever]", s.ExplicitlyCovered)
	}
	if !slices.Equal(s.Volunteered, []string{"shortness of breath"}) {
		t.Errorf("volunteered = %v, expected [shortness of breath]", s.Volunteered)
	}
	if result.Coverage != 1.0/3.0 {
		t.Errorf("coverage = %v, expected 1/3", result.Coverage)
	}
	expectedSummary := "Coverage: 33% | explicitly covered: ['fever'] | volunteered: ['shortness of breath']"
	if result.Summary != expectedSummary {
		t.Errorf("summary = %q, expected %q", result.Summary, expectedSummary)
	}
}

func TestEvaluateCountsNamedSymptomEvenWhenDenied(t *testing.T) {
	s := NewSession(0)
	Evaluate(s, pneumonia().Symptoms, "Do you have a fever?", NegativeAnswer)

	if !slices.Equal(s.ExplicitlyCovered, []string{"fever"}) {
		t.Errorf("a question naming a symptom should count as covered, got %v", s.ExplicitlyCovered)
	}
}

func TestEvaluateMatchesPartialTokens(t *testing.T) {
	s := NewSession(0)
	Evaluate(s, pneumonia().Symptoms, "Do you have coughing?", "Yes, I am experiencing cough.")

	if !slices.Equal(s.ExplicitlyCovered, []string{"cough"}) {
		t.Errorf("expected cough to match inside coughing, got %v", s.ExplicitlyCovered)
	}
}

func TestEvaluateOpenProbe(t *testing.T) {
	tests := []struct {
		name        string
		answer      string
		explicit    []string
		volunteered []string
	}{
		{name: "negative is a no-op", answer: NoOtherSymptoms, volunteered: []string{}},
		{name: "generic negative is a no-op", answer: NegativeAnswer, volunteered: []string{}},
		{name: "lower-case prefix", answer: "yes, i am experiencing Cough, FEVER.", volunteered: []string{"cough", "fever"}},
		{name: "already explicit", answer: "Yes, I am experiencing cough, fever.", explicit: []string{"cough"}, volunteered: []string{"fever"}},
		{name: "duplicate tokens", answer: "Yes, I am experiencing fever, fever..", volunteered: []string{"fever"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(0)
			s.ExplicitlyCovered = append(s.ExplicitlyCovered, tt.explicit...)
			Evaluate(s, pneumonia().Symptoms, probe, tt.answer)

			if !slices.Equal(s.Volunteered, tt.volunteered) {
				t.Errorf("volunteered = %v, expected %v", s.Volunteered, tt.volunteered)
			}
		})
	}
}

func TestEvaluateKeepsVolunteeredOutOfExplicit(t *testing.T) {
	s := NewSession(0)
	symptoms := pneumonia().Symptoms

	Evaluate(s, symptoms, probe, "Yes, I am experiencing fever.")
	Evaluate(s, symptoms, "Do you still have a fever?", "No, I am not experiencing that.")

	if len(s.ExplicitlyCovered) != 0 {
		t.Errorf("volunteered symptom should not move to explicit, got %v", s.ExplicitlyCovered)
	}
}

func TestCoverageRatio(t *testing.T) {
	tests := []struct {
		name     string
		explicit []string
		truth    []string
		expected float64
	}{
		{name: "no true symptoms", explicit: nil, truth: nil, expected: 0},
		{name: "none covered", explicit: nil, truth: []string{"a", "b"}, expected: 0},
		{name: "half", explicit: []string{"a"}, truth: []string{"a", "b"}, expected: 0.5},
		{name: "all", explicit: []string{"a", "b"}, truth: []string{"a", "b"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoverageRatio(tt.explicit, tt.truth); got != tt.expected {
				t.Errorf("CoverageRatio = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestConfidenceTiers(t *testing.T) {
	tests := []struct {
		ratio    float64
		expected models.Confidence
	}{
		{1.0, models.ConfidenceHigh},
		{0.8, models.ConfidenceHigh},
		{0.75, models.ConfidenceHigh},
		{0.74, models.ConfidenceMedium},
		{0.6, models.ConfidenceMedium},
		{0.5, models.ConfidenceMedium},
		{0.49, models.ConfidenceLow},
		{0.3, models.ConfidenceLow},
		{0, models.ConfidenceLow},
	}

	for _, tt := range tests {
		if got := ConfidenceFor(tt.ratio); got != tt.expected {
			t.Errorf("ConfidenceFor(%v) = %s, expected %s", tt.ratio, got, tt.expected)
		}
	}
}

func TestFinalDiagnosis(t *testing.T) {
	symptoms := []string{"a", "b", "c", "d"}
	tests := []struct {
		name     string
		symptoms []string
		known    []string
		expected models.Confidence
		ratio    float64
	}{
		{name: "three of four", symptoms: symptoms, known: []string{"a", "b", "c"}, expected: models.ConfidenceHigh, ratio: 0.75},
		{name: "two of four", symptoms: symptoms, known: []string{"a", "B"}, expected: models.ConfidenceMedium, ratio: 0.5},
		{name: "four of five", symptoms: []string{"a", "b", "c", "d", "e"}, known: []string{"a", "b", "c", "d"}, expected: models.ConfidenceHigh, ratio: 0.8},
		{name: "unrelated known symptoms", symptoms: symptoms, known: []string{"x", "y", "a"}, expected: models.ConfidenceLow, ratio: 0.25},
		{name: "no true symptoms", symptoms: nil, known: []string{"a"}, expected: models.ConfidenceLow, ratio: 0},
		{name: "blank symptoms are ignored", symptoms: []string{"cough", " ", ""}, known: []string{"cough"}, expected: models.ConfidenceHigh, ratio: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &models.PatientRecord{Diagnosis: "Pneumonia", Symptoms: tt.symptoms}
			d := NewDoctor(catalog.Default(), rec)

			v := d.FinalDiagnosis(0.1, tt.known)
			if v.Diagnosis != "Pneumonia" {
				t.Errorf("diagnosis = %q, expected the ground truth", v.Diagnosis)
			}
			if v.Confidence != tt.expected {
				t.Errorf("confidence = %s, expected %s", v.Confidence, tt.expected)
			}
			if v.ReportedRatio != tt.ratio {
				t.Errorf("ratio = %v, expected %v", v.ReportedRatio, tt.ratio)
			}
		})
	}
}
