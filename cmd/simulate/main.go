package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"patientsim/config"
	"patientsim/models"
	"patientsim/services"
	"patientsim/services/catalog"
	"patientsim/services/interview"
	"patientsim/services/preprocess"
)

func main() {
	patientsFile := flag.String("patients", "", "JSON file with patient records (default: embedded demo set)")
	caseID := flag.String("case", "", "hadm_id of the patient to simulate (default: random)")
	seed := flag.Int64("seed", 0, "random seed (default: SIM_SEED or the clock)")
	showTranscript := flag.Bool("transcript", true, "print the turn-by-turn transcript")
	flag.Parse()

	log.Printf("[INFO] Starting patient simulation")

	cfg := config.Load()
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}

	backend, err := services.NewBackend(cfg)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize LLM backend: %v", err)
	}

	compiler, err := services.NewCompiler(cfg.PromptDir, cfg.Simulation.WordSample)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize persona compiler: %v", err)
	}

	service := services.NewSimulationService(cfg.Simulation, catalog.Default(), compiler, backend, nil, nil)

	req := services.SimulationRequest{Seed: cfg.Simulation.Seed}
	if err := selectPatients(&req, *patientsFile, *caseID); err != nil {
		log.Fatalf("[ERROR] Failed to load patients: %v", err)
	}

	result, err := service.Run(context.Background(), req)
	if err != nil {
		log.Fatalf("[ERROR] Simulation failed: %v", err)
	}

	if *showTranscript {
		fmt.Println(interview.RenderTranscript(result.Transcript))
	}
	fmt.Println(interview.RenderReport(result.Report))

	for agent, tokens := range result.Tokens {
		total := 0
		for _, n := range tokens.TotalTokens {
			total += n
		}
		fmt.Printf("%s tokens: %d over %d calls\n", agent, total, len(tokens.TotalTokens))
	}
}

// selectPatients fills the request from the patients file. A named case is
// simulated directly; otherwise the service draws a random valid record.
func selectPatients(req *services.SimulationRequest, path, caseID string) error {
	var inputs []models.PatientInput
	var err error
	if path == "" {
		inputs, err = preprocess.DemoPatients()
	} else {
		inputs, err = loadFile(path)
	}
	if err != nil {
		return err
	}

	if caseID == "" {
		req.Patients = inputs
		return nil
	}
	for i := range inputs {
		if inputs[i].HadmID != nil && string(*inputs[i].HadmID) == caseID {
			req.Patient = &inputs[i]
			return nil
		}
	}
	return fmt.Errorf("no patient with hadm_id %s", caseID)
}

func loadFile(path string) ([]models.PatientInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return preprocess.LoadPatients(f)
}
