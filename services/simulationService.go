package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"patientsim/config"
	"patientsim/db"
	"patientsim/models"
	"patientsim/services/catalog"
	"patientsim/services/interview"
	"patientsim/services/llm"
	"patientsim/services/persona"
	"patientsim/services/preprocess"
)

var ErrUnknownBackend = errors.New("unknown llm backend")

// SimulationObserver receives turn, session and preprocessing events.
type SimulationObserver interface {
	interview.Observer
	ObserveSkipped(n int)
}

type SimulationRequest struct {
	Patient              *models.PatientInput  `json:"patient,omitempty"`
	Patients             []models.PatientInput `json:"patients,omitempty"`
	Seed                 int64                 `json:"seed,omitempty"`
	VolunteerProbability *float64              `json:"volunteer_probability,omitempty"`
	MaxTurns             int                   `json:"max_turns,omitempty"`
}

type SimulationService struct {
	settings config.SimulationConfig
	catalog  *catalog.Catalog
	compiler *persona.Compiler
	backend  llm.Backend
	repo     db.ReportRepository
	observer SimulationObserver
}

// NewSimulationService wires one simulation pipeline. A nil backend runs the
// scripted doctor and patient; repo and observer may also be nil.
func NewSimulationService(settings config.SimulationConfig, c *catalog.Catalog, compiler *persona.Compiler, backend llm.Backend, repo db.ReportRepository, observer SimulationObserver) *SimulationService {
	return &SimulationService{
		settings: settings,
		catalog:  c,
		compiler: compiler,
		backend:  backend,
		repo:     repo,
		observer: observer,
	}
}

// NewBackend picks the chat backend named in the configuration. The scripted
// backend is represented by a nil Backend.
func NewBackend(cfg *config.Config) (llm.Backend, error) {
	switch strings.ToLower(cfg.LLMBackend) {
	case "", config.BackendScripted:
		return nil, nil
	case config.BackendOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the %s backend", config.BackendOpenAI)
		}
		backend, err := llm.NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case config.BackendAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the %s backend", config.BackendAnthropic)
		}
		return llm.NewAnthropicBackend(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.LLMBackend)
	}
}

// NewCompiler loads the bias dictionaries from dir, or the embedded set when
// dir is empty.
func NewCompiler(dir string, wordSample int) (*persona.Compiler, error) {
	if dir == "" {
		return persona.NewCompiler(nil, wordSample), nil
	}
	dicts, err := persona.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load bias dictionaries: %w", err)
	}
	return persona.NewCompiler(dicts, wordSample), nil
}

// Run simulates one interview. The patient comes from the request or, when
// absent, is drawn at random from the valid records in Patients or the
// embedded demo set.
func (s *SimulationService) Run(ctx context.Context, req SimulationRequest) (*models.SimulationResult, error) {
	log.Printf("[INFO] Starting simulation")

	seed := req.Seed
	if seed == 0 {
		seed = s.settings.Seed
	}
	rng := interview.NewRandom(seed)

	rec, err := s.selectPatient(req, rng)
	if err != nil {
		log.Printf("[ERROR] Failed to prepare patient: %v", err)
		return nil, err
	}

	if err := s.compiler.Compile(rec); err != nil {
		log.Printf("[ERROR] Failed to compile persona for case %s: %v", rec.CaseID, err)
		return nil, err
	}

	session := interview.NewSession(s.settings.MaxInferences)
	maxTurns := req.MaxTurns
	if maxTurns <= 0 {
		maxTurns = s.settings.MaxTurns
	}
	sim := interview.NewSimulator(maxTurns, s.observer)

	var result *models.SimulationResult
	if s.backend == nil {
		probability := s.settings.VolunteerProbability
		if req.VolunteerProbability != nil {
			probability = *req.VolunteerProbability
		}
		doctor := interview.NewDoctor(s.catalog, rec)
		patient := interview.NewPatient(rec, rng, probability)
		result, err = sim.Run(ctx, rec, doctor, patient, session)
	} else {
		result, err = s.runAgents(ctx, sim, rec, session)
	}
	if err != nil {
		log.Printf("[ERROR] Simulation failed for case %s: %v", rec.CaseID, err)
		return nil, fmt.Errorf("failed to run simulation: %w", err)
	}

	if s.repo != nil {
		if err := s.repo.SaveReport(&result.Report); err != nil {
			log.Printf("[ERROR] Failed to save report %s: %v", result.Report.ID, err)
			return nil, fmt.Errorf("failed to save report: %w", err)
		}
	}

	log.Printf("[INFO] Successfully completed simulation %s for case %s", result.SessionID, rec.CaseID)
	return result, nil
}

func (s *SimulationService) runAgents(ctx context.Context, sim *interview.Simulator, rec *models.PatientRecord, session *interview.Session) (*models.SimulationResult, error) {
	patient, err := llm.NewPatientAgent(s.backend, rec)
	if err != nil {
		return nil, err
	}
	doctor := llm.NewDoctorAgent(s.backend, rec, s.settings.TopKDiagnosis)

	result, err := sim.Run(ctx, rec, doctor, patient, session)
	if err != nil {
		return nil, err
	}
	result.Tokens = map[string]models.TokenLog{
		"doctor":  doctor.Tokens(),
		"patient": patient.Tokens(),
	}
	return result, nil
}

func (s *SimulationService) selectPatient(req SimulationRequest, rng interview.RandomSource) (*models.PatientRecord, error) {
	pre := preprocess.New(s.catalog, rng)
	if req.Patient != nil {
		return pre.Preprocess(*req.Patient)
	}

	inputs := req.Patients
	if len(inputs) == 0 {
		var err error
		if inputs, err = preprocess.DemoPatients(); err != nil {
			return nil, err
		}
	}
	records, skipped := pre.PreprocessAll(inputs)
	if s.observer != nil && skipped > 0 {
		s.observer.ObserveSkipped(skipped)
	}
	if len(records) == 0 {
		return nil, preprocess.ErrNoValidPatient
	}
	return records[rng.Intn(len(records))], nil
}

func (s *SimulationService) ListReports() ([]*models.Report, error) {
	log.Printf("[INFO] Starting list reports")

	if s.repo == nil {
		return []*models.Report{}, nil
	}
	reports, err := s.repo.ListReports()
	if err != nil {
		log.Printf("[ERROR] Failed to list reports: %v", err)
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	log.Printf("[INFO] Successfully retrieved %d reports", len(reports))
	return reports, nil
}

func (s *SimulationService) GetReport(id string) (*models.Report, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("report with id %s not found: %w", id, db.ErrNotFound)
	}
	return s.repo.GetReportByID(id)
}

// Diagnoses lists every catalog entry in label order.
func (s *SimulationService) Diagnoses() []catalog.Entry {
	labels := s.catalog.Diagnoses()
	entries := make([]catalog.Entry, 0, len(labels))
	for _, label := range labels {
		if e, ok := s.catalog.Entry(label); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// Diagnosis looks up one entry. On a miss it returns close labels instead.
func (s *SimulationService) Diagnosis(name string) (catalog.Entry, []string, bool) {
	if e, ok := s.catalog.Entry(name); ok {
		return e, nil, true
	}
	return catalog.Entry{}, s.catalog.Suggest(name), false
}
