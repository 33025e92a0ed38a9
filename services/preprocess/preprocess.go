package preprocess

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"patientsim/models"
	"patientsim/services/catalog"
	"patientsim/services/interview"

	"github.com/samber/lo"
)

const (
	DemoSplit    = "demo"
	wordsPerSlot = 2
)

var ErrNoValidPatient = errors.New("no valid patient record")

//go:embed demo_patients.json
var demoPatients []byte

var cefrVocabulary = map[string][]string{
	"A": {"pain", "feel", "bad", "hurt", "ache"},
	"B": {"pressure", "burning", "sharp", "tight", "throbbing"},
	"C": {"radiating", "intermittent", "progressive", "intense", "stabbing"},
}

var medicalVocabulary = map[string][]string{
	"A": {"pain", "urine", "burning", "ache"},
	"B": {"infection", "pressure", "headache", "cough", "fever"},
	"C": {"myocardial infarction", "photophobia", "vomiting", "distension"},
}

// Preprocessor turns raw patient inputs into records ready for persona
// compilation and simulation.
type Preprocessor struct {
	catalog *catalog.Catalog
	rng     interview.RandomSource
}

func New(c *catalog.Catalog, rng interview.RandomSource) *Preprocessor {
	return &Preprocessor{catalog: c, rng: rng}
}

// Preprocess checks the required fields, fills persona defaults, samples the
// per-level vocabulary and resolves the true symptoms. Symptoms supplied on
// the input win over the catalog.
func (p *Preprocessor) Preprocess(in models.PatientInput) (*models.PatientRecord, error) {
	if err := checkRequired(in); err != nil {
		return nil, err
	}

	rec := &models.PatientRecord{
		CaseID:      string(*in.HadmID),
		Diagnosis:   *in.Diagnosis,
		Age:         *in.Age,
		Sex:         *in.Sex,
		Personality: withDefault(in.Personality, models.DefaultPersonality),
		CEFR:        withDefault(in.CEFR, models.DefaultCEFR),
		RecallLevel: withDefault(in.RecallLevel, models.DefaultRecallLevel),
		DazedLevel:  withDefault(in.DazedLevel, models.DefaultDazedLevel),
		Vocabulary:  make(map[string]models.LevelVocabulary, len(cefrVocabulary)),
		Split:       DemoSplit,
	}

	for _, level := range []string{"A", "B", "C"} {
		rec.Vocabulary[level] = models.LevelVocabulary{
			Understood:    p.sample(cefrVocabulary[level], wordsPerSlot),
			Misunderstood: p.sample(cefrVocabulary[level], wordsPerSlot),
			Medical:       p.sample(medicalVocabulary[level], wordsPerSlot),
		}
	}

	rec.ChiefComplaint = rec.Diagnosis
	rec.HistoryOfPresentIllness = fmt.Sprintf("The patient reports %s.", rec.Diagnosis)
	if in.PresentIllness != nil {
		if in.PresentIllness.ChiefComplaint != "" {
			rec.ChiefComplaint = in.PresentIllness.ChiefComplaint
		}
		if in.PresentIllness.HPI != "" {
			rec.HistoryOfPresentIllness = in.PresentIllness.HPI
		}
	}

	symptoms := lo.Compact(lo.Map(in.Symptoms, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	if len(symptoms) > 0 {
		rec.Symptoms = symptoms
	} else {
		rec.Symptoms = p.catalog.Symptoms(rec.Diagnosis)
	}

	return rec, nil
}

// PreprocessAll keeps every record that passes Preprocess and reports how
// many were skipped.
func (p *Preprocessor) PreprocessAll(inputs []models.PatientInput) ([]*models.PatientRecord, int) {
	records := make([]*models.PatientRecord, 0, len(inputs))
	skipped := 0
	for _, in := range inputs {
		rec, err := p.Preprocess(in)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	log.Printf("[INFO] Preprocessed %d patient records, skipped %d", len(records), skipped)
	return records, skipped
}

// RandomPatient preprocesses inputs and picks one valid record at random.
func (p *Preprocessor) RandomPatient(inputs []models.PatientInput) (*models.PatientRecord, error) {
	records, _ := p.PreprocessAll(inputs)
	if len(records) == 0 {
		return nil, ErrNoValidPatient
	}
	return records[p.rng.Intn(len(records))], nil
}

// LoadPatients decodes a JSON array of patient inputs.
func LoadPatients(r io.Reader) ([]models.PatientInput, error) {
	var inputs []models.PatientInput
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("failed to decode patient records: %w", err)
	}
	return inputs, nil
}

// DemoPatients returns the bundled demo patient inputs.
func DemoPatients() ([]models.PatientInput, error) {
	return LoadPatients(bytes.NewReader(demoPatients))
}

func checkRequired(in models.PatientInput) error {
	missing := ""
	switch {
	case in.HadmID == nil:
		missing = "hadm_id"
	case in.Diagnosis == nil:
		missing = "diagnosis"
	case in.Age == nil:
		missing = "age"
	case in.Sex == nil:
		missing = "sex"
	}
	if missing == "" {
		return nil
	}
	log.Printf("[WARN] Missing field %s, skipping patient", missing)
	return models.MissingField(missing)
}

// sample draws n distinct words without replacement.
func (p *Preprocessor) sample(words []string, n int) []string {
	pool := append([]string(nil), words...)
	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + p.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
