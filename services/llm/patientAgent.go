package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"patientsim/models"
	"patientsim/services/interview"
)

// PatientAgent plays the patient through a chat model, conditioned on the
// compiled persona.
type PatientAgent struct {
	backend  Backend
	system   string
	messages []models.Message
	tokens   models.TokenLog
}

// NewPatientAgent builds the system prompt from rec. The persona must already
// be compiled.
func NewPatientAgent(backend Backend, rec *models.PatientRecord) (*PatientAgent, error) {
	if rec.Persona == nil {
		return nil, fmt.Errorf("persona for case %s has not been compiled", rec.CaseID)
	}

	tmpl := patientSystemPrompt
	if strings.EqualFold(strings.TrimSpace(rec.Diagnosis), utiDiagnosis) {
		tmpl = patientUTISystemPrompt
	}
	system, err := fillTemplate(tmpl, rec.Fields())
	if err != nil {
		return nil, fmt.Errorf("failed to build patient prompt: %w", err)
	}

	log.Printf("[INFO] Patient agent ready for case %s - %s", rec.CaseID, rec.Diagnosis)
	return &PatientAgent{backend: backend, system: system}, nil
}

func (a *PatientAgent) Respond(ctx context.Context, _ *interview.Session, question string) (string, error) {
	a.messages = append(a.messages, models.Message{Role: RoleUser, Content: question})

	completion, err := a.backend.Generate(ctx, Request{System: a.system, Messages: a.messages})
	if err != nil {
		a.messages = a.messages[:len(a.messages)-1]
		return "", fmt.Errorf("failed to generate patient answer: %w", err)
	}

	answer := strings.TrimSpace(completion.Text)
	a.tokens.Add(completion.Usage.PromptTokens, completion.Usage.CompletionTokens, completion.Usage.TotalTokens)
	a.messages = append(a.messages, models.Message{Role: RoleAssistant, Content: answer})
	return answer, nil
}

func (a *PatientAgent) SystemPrompt() string { return a.system }

func (a *PatientAgent) Messages() []models.Message {
	return append([]models.Message(nil), a.messages...)
}

func (a *PatientAgent) Tokens() models.TokenLog { return a.tokens }
